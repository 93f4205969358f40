package types

import "github.com/google/uuid"

// NewID returns a fresh identifier. UUID v7 keeps ids roughly time ordered;
// if the v7 generator fails we fall back to a random v4.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
