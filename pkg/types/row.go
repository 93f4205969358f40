package types

import (
	"errors"
	"slices"
)

// Row errors.
var (
	ErrRowNotFound = errors.New("row not found")
)

// TileLayout places one tile within a row.
type TileLayout struct {
	TileID          string   `json:"tileId"`
	WidthPct        *float64 `json:"widthPct,omitempty"`
	IsUserResizable bool     `json:"isUserResizable,omitempty"`
}

// Row is an ordered run of tile references. A section header row carries a
// SectionID and never holds tiles.
type Row struct {
	ID              string       `json:"id"`
	Height          float64      `json:"height,omitempty"`
	IsSectionHeader bool         `json:"isSectionHeader,omitempty"`
	SectionID       string       `json:"sectionId,omitempty"`
	Tiles           []TileLayout `json:"tiles,omitempty"`
}

// IsEmpty reports whether a non-header row has lost all of its tiles.
func (r *Row) IsEmpty() bool {
	return !r.IsSectionHeader && len(r.Tiles) == 0
}

// TileCount returns the number of tiles in the row.
func (r *Row) TileCount() int {
	return len(r.Tiles)
}

// HasTile reports whether the row references tileID.
func (r *Row) HasTile(tileID string) bool {
	return r.IndexOfTile(tileID) >= 0
}

// IndexOfTile returns the position of tileID in the row, or -1.
func (r *Row) IndexOfTile(tileID string) int {
	return slices.IndexFunc(r.Tiles, func(l TileLayout) bool { return l.TileID == tileID })
}

// TileIDs returns the ids of the row's tiles in order.
func (r *Row) TileIDs() []string {
	ids := make([]string, len(r.Tiles))
	for i, l := range r.Tiles {
		ids[i] = l.TileID
	}
	return ids
}

// InsertTile inserts layout at index; a negative or out-of-range index
// appends.
func (r *Row) InsertTile(layout TileLayout, index int) {
	if index < 0 || index >= len(r.Tiles) {
		r.Tiles = append(r.Tiles, layout)
		return
	}
	r.Tiles = slices.Insert(r.Tiles, index, layout)
}

// RemoveTile drops tileID from the row and reports whether it was present.
func (r *Row) RemoveTile(tileID string) bool {
	i := r.IndexOfTile(tileID)
	if i < 0 {
		return false
	}
	r.Tiles = slices.Delete(r.Tiles, i, i+1)
	return true
}

// RemoveTilesFunc drops every tile whose id satisfies del.
func (r *Row) RemoveTilesFunc(del func(tileID string) bool) {
	r.Tiles = slices.DeleteFunc(r.Tiles, func(l TileLayout) bool { return del(l.TileID) })
}

// MoveTileInRow moves tileID to position dst of the row after removal. An
// out-of-range dst moves it to the end.
func (r *Row) MoveTileInRow(tileID string, dst int) {
	src := r.IndexOfTile(tileID)
	if src < 0 {
		return
	}
	layout := r.Tiles[src]
	r.Tiles = slices.Delete(r.Tiles, src, src+1)
	r.InsertTile(layout, dst)
}

// AcceptsTileDrop reports whether a drop described by info lands inside this
// row rather than in a new row next to it.
func (r *Row) AcceptsTileDrop(info DropRowInfo) bool {
	if r.IsSectionHeader {
		return false
	}
	return info.RowDropLocation == DropLeft || info.RowDropLocation == DropRight
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	c := *r
	c.Tiles = slices.Clone(r.Tiles)
	for i, l := range c.Tiles {
		if l.WidthPct != nil {
			w := *l.WidthPct
			c.Tiles[i].WidthPct = &w
		}
	}
	return &c
}
