package types

import (
	"encoding/json"
	"slices"
)

// SharedModel is a data object that several tiles can use at once.
type SharedModel struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Name string          `json:"name,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Clone returns a copy of the model with its own Data buffer.
func (m *SharedModel) Clone() *SharedModel {
	c := *m
	c.Data = slices.Clone(m.Data)
	return &c
}

// SharedModelEntry binds one shared model to the tiles using it. Tiles is
// ordered and includes the provider when there is one. IndexOfType is stable
// once assigned.
type SharedModelEntry struct {
	Model       *SharedModel `json:"sharedModel"`
	Provider    string       `json:"provider,omitempty"`
	Tiles       []string     `json:"tiles"`
	IndexOfType int          `json:"indexOfType"`
}

// HasTile reports whether tileID uses the entry's model.
func (e *SharedModelEntry) HasTile(tileID string) bool {
	return slices.Contains(e.Tiles, tileID)
}

// IsOrphaned reports whether no tile uses the model any more.
func (e *SharedModelEntry) IsOrphaned() bool {
	return len(e.Tiles) == 0
}

// Clone returns a deep copy of the entry.
func (e *SharedModelEntry) Clone() *SharedModelEntry {
	c := *e
	if e.Model != nil {
		c.Model = e.Model.Clone()
	}
	c.Tiles = slices.Clone(e.Tiles)
	return &c
}

// SharedModelManager is the view of the shared-model registry handed to tile
// content. Tiles are referred to by id.
type SharedModelManager interface {
	AddTileSharedModel(tileID string, model *SharedModel, isProvider bool)
	RemoveTileSharedModel(tileID string, model *SharedModel)
	TileSharedModels(tileID string) []*SharedModel
	SharedModelsByType(typ string) []*SharedModel
	// FindFirstSharedModelByType returns the first model of typ; when
	// providerID is set, the first one provided by that tile.
	FindFirstSharedModelByType(typ, providerID string) *SharedModel
}
