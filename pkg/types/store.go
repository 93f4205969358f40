package types

import (
	"encoding/json"
	"errors"
	"time"
)

// DocumentStore persists named document snapshots. Callers attach to a
// backend, work with documents, and detach when done.
type DocumentStore interface {
	// Attach connects the store to the backend described by config.
	// Creates the DataDir if it does not exist; returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, document operations return ErrStoreDetached.
	Detach() error

	// SaveDocument stores snapshot under name, replacing the snapshot of an
	// existing document with that name.
	SaveDocument(name string, snapshot json.RawMessage) (*StoredDocument, error)
	LoadDocument(id string) (*StoredDocument, error)
	FindDocument(name string) (*StoredDocument, error)
	// ListDocuments returns all documents ordered by creation time.
	ListDocuments() ([]*StoredDocument, error)
	DeleteDocument(id string) error
}

// StoredDocument is one persisted document.
type StoredDocument struct {
	DocumentID string          `json:"document_id"`
	Name       string          `json:"name"`
	Snapshot   json.RawMessage `json:"snapshot"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Store lifecycle errors.
var (
	ErrStoreDetached    = errors.New("store is detached")
	ErrAlreadyAttached  = errors.New("store is already attached")
	ErrInvalidName      = errors.New("invalid document name")
	ErrInvalidID        = errors.New("invalid document id")
	ErrSnapshotRequired = errors.New("snapshot must not be empty")
)
