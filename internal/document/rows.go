package document

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// isPlaceholderRow reports whether every tile of a non-empty row is a
// placeholder.
func (d *Content) isPlaceholderRow(row *types.Row) bool {
	if row == nil || len(row.Tiles) == 0 {
		return false
	}
	for _, l := range row.Tiles {
		if !d.tiles[l.TileID].IsPlaceholder() {
			return false
		}
	}
	return true
}

// IsPlaceholderRow reports whether the root row rowID holds only placeholder
// tiles.
func (d *Content) IsPlaceholderRow(rowID string) bool {
	return d.isPlaceholderRow(d.rows.Row(rowID))
}

// DefaultInsertRow is where new root content goes when no position is
// given: after the last real content row at or above the last visible row.
func (d *Content) DefaultInsertRow() int {
	return d.defaultInsertRow(d.rows)
}

func (d *Content) defaultInsertRow(rl *types.RowList) int {
	if rl != d.rows {
		return rl.RowCount()
	}
	last := rl.IndexOfLastVisibleRow(d.visibleRows)
	for i := last; i >= 0; i-- {
		row := rl.RowByIndex(i)
		if !row.IsSectionHeader && !d.isPlaceholderRow(row) {
			return i + 1
		}
	}
	for i, row := range rl.Rows() {
		if !row.IsSectionHeader {
			return i
		}
	}
	return last + 1
}

// removeNeighboringPlaceholderRows drops placeholder rows directly above
// and below rowIndex.
func (d *Content) removeNeighboringPlaceholderRows(rl *types.RowList, rowIndex int) {
	var before, after *types.Row
	if rowIndex > 0 {
		before = rl.RowByIndex(rowIndex - 1)
	}
	if rowIndex < rl.RowCount()-1 {
		after = rl.RowByIndex(rowIndex + 1)
	}
	if after != nil && d.isPlaceholderRow(after) {
		d.discardRow(rl, after)
	}
	if before != nil && d.isPlaceholderRow(before) {
		d.discardRow(rl, before)
	}
}

// discardRow deletes a row together with the placeholder tiles it holds.
func (d *Content) discardRow(rl *types.RowList, row *types.Row) {
	d.deleteRow(rl, row.ID)
	for _, id := range row.TileIDs() {
		if d.tiles[id].IsPlaceholder() {
			d.removeTileFromMap(id)
		}
	}
}

// addPlaceholderRowIfAppropriate inserts a placeholder row at rowIndex when
// the row above is a section header and nothing but another header (or the
// end) follows.
func (d *Content) addPlaceholderRowIfAppropriate(rl *types.RowList, rowIndex int) {
	if rowIndex <= 0 {
		return
	}
	before := rl.RowByIndex(rowIndex - 1)
	after := rl.RowByIndex(rowIndex)
	if before == nil || !before.IsSectionHeader {
		return
	}
	if after != nil && !after.IsSectionHeader {
		return
	}
	tile := d.newPlaceholderTile(before.SectionID)
	if tile == nil {
		return
	}
	d.insertTileInNewRow(rl, tile, rowIndex, 0)
}

func (d *Content) newPlaceholderTile(sectionID string) *types.Tile {
	raw, _ := json.Marshal(struct {
		Type      string `json:"type"`
		SectionID string `json:"sectionId,omitempty"`
	}{types.PlaceholderType, sectionID})
	content, err := d.contentFromSnapshot(raw)
	if err != nil {
		d.log.Error("creating placeholder tile", zap.Error(err))
		return nil
	}
	return &types.Tile{ID: types.NewID(), Content: content}
}

// removePlaceholderTilesFromRow strips placeholder tiles from the row at
// rowIndex once real content has joined it.
func (d *Content) removePlaceholderTilesFromRow(rl *types.RowList, rowIndex int) {
	row := rl.RowByIndex(rowIndex)
	if row == nil {
		return
	}
	var removed []string
	d.editRow(row, func(r *types.Row) {
		r.RemoveTilesFunc(func(id string) bool {
			if d.tiles[id].IsPlaceholder() {
				removed = append(removed, id)
				return true
			}
			return false
		})
	})
	for _, id := range removed {
		d.removeTileFromMap(id)
	}
}

// deleteRowAddingPlaceholderRowIfAppropriate removes a row and repairs the
// section it belonged to.
func (d *Content) deleteRowAddingPlaceholderRowIfAppropriate(rl *types.RowList, rowID string) {
	index := rl.RowIndex(rowID)
	if index < 0 {
		return
	}
	d.deleteRow(rl, rowID)
	d.addPlaceholderRowIfAppropriate(rl, index)
}

// deleteTilesFromRow removes every tile of the row from the row and the map.
func (d *Content) deleteTilesFromRow(row *types.Row) {
	ids := row.TileIDs()
	d.editRow(row, func(r *types.Row) { r.Tiles = nil })
	for _, id := range ids {
		d.removeTileFromMap(id)
	}
}

// repairSections adds placeholder rows under collapsed sections, as done
// after load.
func (d *Content) repairSections() {
	for i := 1; i < d.rows.RowCount(); i++ {
		d.addPlaceholderRowIfAppropriate(d.rows, i)
	}
	if n := d.rows.RowCount(); n > 0 {
		d.addPlaceholderRowIfAppropriate(d.rows, n)
	}
}

func (d *Content) layoutFor(tile *types.Tile) types.TileLayout {
	return types.TileLayout{TileID: tile.ID, IsUserResizable: d.isUserResizable(tile.ID)}
}

// insertTileInNewRow puts tile in the map and in a new row at rowIndex,
// then clears neighbouring placeholder rows.
func (d *Content) insertTileInNewRow(rl *types.RowList, tile *types.Tile, rowIndex int, height float64) types.NewRowTile {
	if rowIndex < 0 {
		rowIndex = d.defaultInsertRow(rl)
	}
	d.putTile(tile)
	row := &types.Row{ID: types.NewID(), Tiles: []types.TileLayout{d.layoutFor(tile)}}
	at := d.insertRow(rl, row, rowIndex)
	if !tile.IsPlaceholder() {
		d.removeNeighboringPlaceholderRows(rl, at)
	}
	if height > 0 {
		d.setRowHeight(row, height)
	}
	return types.NewRowTile{RowID: row.ID, TileID: tile.ID}
}

// insertTileInExistingRow adds tile to row; a left drop puts it first.
func (d *Content) insertTileInExistingRow(rl *types.RowList, row *types.Row, tile *types.Tile, loc types.DropLocation, height float64) types.NewRowTile {
	index := -1
	if loc == types.DropLeft {
		index = 0
	}
	d.putTile(tile)
	d.editRow(row, func(r *types.Row) { r.InsertTile(d.layoutFor(tile), index) })
	rowIndex := rl.RowIndex(row.ID)
	d.removePlaceholderTilesFromRow(rl, rowIndex)
	d.removeNeighboringPlaceholderRows(rl, rl.RowIndex(row.ID))
	if height > 0 {
		d.setRowHeight(row, max(row.Height, height))
	}
	return types.NewRowTile{RowID: row.ID, TileID: tile.ID}
}

// resolveDropRow finds the row targeted by info within rl.
func resolveDropRow(rl *types.RowList, info types.DropRowInfo) (*types.Row, int) {
	if info.RowDropID != "" {
		return rl.Row(info.RowDropID), rl.RowIndex(info.RowDropID)
	}
	if info.RowDropIndex >= 0 {
		return rl.RowByIndex(info.RowDropIndex), info.RowDropIndex
	}
	return nil, -1
}
