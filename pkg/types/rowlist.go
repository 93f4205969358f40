package types

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// RowList is an ordered collection of rows. The order slice is the only
// source of ordering; the map only resolves ids. The document root and every
// container tile each own one.
type RowList struct {
	rows  map[string]*Row
	order []string
}

// NewRowList returns an empty RowList.
func NewRowList() *RowList {
	return &RowList{rows: make(map[string]*Row)}
}

// InsertRow inserts row at index. A negative or out-of-range index appends.
// The row's contents are not validated. Returns the index the row landed at.
func (rl *RowList) InsertRow(row *Row, index int) int {
	if rl.rows == nil {
		rl.rows = make(map[string]*Row)
	}
	rl.rows[row.ID] = row
	if index < 0 || index >= len(rl.order) {
		rl.order = append(rl.order, row.ID)
		return len(rl.order) - 1
	}
	rl.order = slices.Insert(rl.order, index, row.ID)
	return index
}

// DeleteRow removes the row from the list and returns it detached, or nil
// when id is unknown.
func (rl *RowList) DeleteRow(id string) *Row {
	row, ok := rl.rows[id]
	if !ok {
		return nil
	}
	delete(rl.rows, id)
	if i := slices.Index(rl.order, id); i >= 0 {
		rl.order = slices.Delete(rl.order, i, i+1)
	}
	return row
}

// Row returns the row with the given id, or nil.
func (rl *RowList) Row(id string) *Row {
	return rl.rows[id]
}

// RowByIndex returns the row at index, or nil when out of range.
func (rl *RowList) RowByIndex(index int) *Row {
	if index < 0 || index >= len(rl.order) {
		return nil
	}
	return rl.rows[rl.order[index]]
}

// RowIndex returns the position of the row, or -1.
func (rl *RowList) RowIndex(id string) int {
	return slices.Index(rl.order, id)
}

// RowCount returns the number of rows.
func (rl *RowList) RowCount() int {
	return len(rl.order)
}

// RowIDs returns a copy of the row order.
func (rl *RowList) RowIDs() []string {
	return slices.Clone(rl.order)
}

// Rows returns the rows in order.
func (rl *RowList) Rows() []*Row {
	rows := make([]*Row, 0, len(rl.order))
	for _, id := range rl.order {
		if row := rl.rows[id]; row != nil {
			rows = append(rows, row)
		}
	}
	return rows
}

// FindRowContainingTile returns the id of the row referencing tileID, or "".
func (rl *RowList) FindRowContainingTile(tileID string) string {
	for _, id := range rl.order {
		if row := rl.rows[id]; row != nil && row.HasTile(tileID) {
			return id
		}
	}
	return ""
}

// TileIDs returns the ids of all tiles directly in this list, in row order
// then tile order.
func (rl *RowList) TileIDs() []string {
	var ids []string
	for _, row := range rl.Rows() {
		ids = append(ids, row.TileIDs()...)
	}
	return ids
}

// IndexOfLastVisibleRow scans visibleRowIDs from the end for the last id
// still present in this list and returns its index. Without a match it falls
// back to the last row, and to -1 for an empty list.
func (rl *RowList) IndexOfLastVisibleRow(visibleRowIDs []string) int {
	for i := len(visibleRowIDs) - 1; i >= 0; i-- {
		if idx := rl.RowIndex(visibleRowIDs[i]); idx >= 0 {
			return idx
		}
	}
	return len(rl.order) - 1
}

// ShallowCopy returns a RowList sharing row pointers with rl but owning its
// own map and order slice.
func (rl *RowList) ShallowCopy() *RowList {
	return &RowList{rows: maps.Clone(rl.rows), order: slices.Clone(rl.order)}
}

// ReplaceWith makes rl hold the same rows, in the same order, as other.
func (rl *RowList) ReplaceWith(other *RowList) {
	rl.rows = maps.Clone(other.rows)
	rl.order = slices.Clone(other.order)
	if rl.rows == nil {
		rl.rows = make(map[string]*Row)
	}
}

type rowListJSON struct {
	RowMap   map[string]*Row `json:"rowMap"`
	RowOrder []string        `json:"rowOrder"`
}

// MarshalJSON emits {"rowMap":{...},"rowOrder":[...]}.
func (rl *RowList) MarshalJSON() ([]byte, error) {
	rows := rl.rows
	if rows == nil {
		rows = map[string]*Row{}
	}
	order := rl.order
	if order == nil {
		order = []string{}
	}
	return json.Marshal(rowListJSON{RowMap: rows, RowOrder: order})
}

// UnmarshalJSON restores a RowList, dropping order entries whose row is
// missing from the map.
func (rl *RowList) UnmarshalJSON(data []byte) error {
	var raw rowListJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding row list: %w", err)
	}
	rl.rows = make(map[string]*Row, len(raw.RowMap))
	rl.order = nil
	for _, id := range raw.RowOrder {
		row := raw.RowMap[id]
		if row == nil {
			continue
		}
		row.ID = id
		rl.rows[id] = row
		rl.order = append(rl.order, id)
	}
	return nil
}
