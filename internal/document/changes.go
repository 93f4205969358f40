package document

import (
	"slices"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// The functions in this file are the only places that mutate document
// state. Each one records its inverse in the open transaction.

func (d *Content) editRowList(rl *types.RowList, fn func()) {
	before := rl.ShallowCopy()
	fn()
	after := rl.ShallowCopy()
	d.history.record(change{
		undo: func() { rl.ReplaceWith(before) },
		redo: func() { rl.ReplaceWith(after) },
	})
}

func (d *Content) insertRow(rl *types.RowList, row *types.Row, index int) int {
	var at int
	d.editRowList(rl, func() { at = rl.InsertRow(row, index) })
	return at
}

func (d *Content) deleteRow(rl *types.RowList, rowID string) *types.Row {
	var row *types.Row
	d.editRowList(rl, func() { row = rl.DeleteRow(rowID) })
	return row
}

// editRow changes the tile layouts of a row. Height is recorded separately
// by setRowHeight so excluded height changes survive unrelated undos.
func (d *Content) editRow(row *types.Row, fn func(r *types.Row)) {
	before := slices.Clone(row.Tiles)
	fn(row)
	after := slices.Clone(row.Tiles)
	d.history.record(change{
		undo: func() { row.Tiles = slices.Clone(before) },
		redo: func() { row.Tiles = slices.Clone(after) },
	})
}

func (d *Content) setRowHeight(row *types.Row, height float64) {
	before := row.Height
	if before == height {
		return
	}
	row.Height = height
	d.history.record(change{
		undo: func() { row.Height = before },
		redo: func() { row.Height = height },
	})
}

func (d *Content) putTile(tile *types.Tile) {
	prev := d.tiles[tile.ID]
	d.tiles[tile.ID] = tile
	d.history.record(change{
		undo: func() {
			if prev != nil {
				d.tiles[tile.ID] = prev
			} else {
				delete(d.tiles, tile.ID)
			}
		},
		redo: func() { d.tiles[tile.ID] = tile },
	})
}

func (d *Content) removeTileFromMap(id string) {
	prev, ok := d.tiles[id]
	if !ok {
		return
	}
	delete(d.tiles, id)
	d.history.record(change{
		undo: func() { d.tiles[id] = prev },
		redo: func() { delete(d.tiles, id) },
	})
}

func (d *Content) setTileTitle(tile *types.Tile, title string) {
	before := tile.Title
	tile.Title = title
	d.history.record(change{
		undo: func() { tile.Title = before },
		redo: func() { tile.Title = title },
	})
}

// setEntry replaces the registry entry for id; a nil entry removes it.
// Entries are treated as immutable values once stored.
func (d *Content) setEntry(id string, entry *types.SharedModelEntry) {
	prev, had := d.models[id]
	prevOrder := slices.Clone(d.modelOrder)
	apply := func(e *types.SharedModelEntry) {
		if e == nil {
			delete(d.models, id)
			d.modelOrder = slices.DeleteFunc(d.modelOrder, func(x string) bool { return x == id })
			return
		}
		if _, ok := d.models[id]; !ok {
			d.modelOrder = append(d.modelOrder, id)
		}
		d.models[id] = e
	}
	apply(entry)
	afterOrder := slices.Clone(d.modelOrder)
	d.history.record(change{
		undo: func() {
			if had {
				d.models[id] = prev
			} else {
				delete(d.models, id)
			}
			d.modelOrder = slices.Clone(prevOrder)
		},
		redo: func() {
			if entry == nil {
				delete(d.models, id)
			} else {
				d.models[id] = entry
			}
			d.modelOrder = slices.Clone(afterOrder)
		},
	})
}

// setAnnotation stores or, with a nil value, removes an annotation.
func (d *Content) setAnnotation(id string, a *types.Annotation) {
	prev, had := d.annotations[id]
	prevOrder := slices.Clone(d.annoOrder)
	if a == nil {
		delete(d.annotations, id)
		d.annoOrder = slices.DeleteFunc(d.annoOrder, func(x string) bool { return x == id })
	} else {
		if !had {
			d.annoOrder = append(d.annoOrder, id)
		}
		d.annotations[id] = a
	}
	afterOrder := slices.Clone(d.annoOrder)
	d.history.record(change{
		undo: func() {
			if had {
				d.annotations[id] = prev
			} else {
				delete(d.annotations, id)
			}
			d.annoOrder = slices.Clone(prevOrder)
		},
		redo: func() {
			if a == nil {
				delete(d.annotations, id)
			} else {
				d.annotations[id] = a
			}
			d.annoOrder = slices.Clone(afterOrder)
		},
	})
}
