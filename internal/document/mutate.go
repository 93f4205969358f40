package document

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// AddTileOptions configures AddTile.
type AddTileOptions struct {
	Title string
	URL   string
	// InsertRowInfo moves the new tile to a drop target after creation.
	InsertRowInfo *types.DropRowInfo
	// RowListID adds the tile inside a container tile instead of the root.
	RowListID string
}

// AddTile creates a tile of typ with default content, places it in a new
// row and runs its post-create hook. Returns nil when the tile was refused:
// a container inside a container, or an unknown target row list. An
// unregistered typ panics.
func (d *Content) AddTile(typ string, opts AddTileOptions) *types.NewRowTile {
	defer d.begin("addTile")()

	info := d.contentInfo(typ)
	rl := d.rowList(opts.RowListID)
	if rl == nil {
		d.log.Warn("add tile: unknown row list", zap.String("rowListId", opts.RowListID))
		return nil
	}
	if info.IsContainer && opts.RowListID != "" {
		d.log.Warn("add tile: refusing to nest a container tile",
			zap.String("type", typ), zap.String("rowListId", opts.RowListID))
		return nil
	}

	content := info.DefaultContent(types.DefaultContentOptions{Title: opts.Title, URL: opts.URL})
	height := info.DefaultHeight
	if height == 0 {
		height = d.cfg.DefaultRowHeight
	}
	tile := &types.Tile{ID: types.NewID(), Title: opts.Title, Content: content}
	res := d.insertTileInNewRow(rl, tile, rl.RowCount(), height)

	if pc, ok := content.(types.PostCreator); ok {
		pc.DoPostCreate(d.env(tile.ID))
	}
	if opts.InsertRowInfo != nil {
		dest := *opts.InsertRowInfo
		dest.RowListID = opts.RowListID
		d.MoveTile(tile.ID, dest, 0)
		if rowID := rl.FindRowContainingTile(tile.ID); rowID != "" {
			res.RowID = rowID
		}
	}
	d.log.Debug("added tile", zap.String("tileId", tile.ID), zap.String("type", typ))
	return &res
}

// AddTileAfter creates a tile of typ in a new row below the row of targetID
// and links it to models. Without a title a unique one is generated from
// the type's title base.
func (d *Content) AddTileAfter(typ, targetID string, models []*types.SharedModel, opts AddTileOptions) *types.NewRowTile {
	defer d.begin("addTileAfter")()

	rowID := d.rows.FindRowContainingTile(targetID)
	if rowID == "" {
		d.log.Warn("add tile after: target tile not found", zap.String("tileId", targetID))
		return nil
	}
	insert := types.InsertAt(d.rows.RowIndex(rowID) + 1)
	opts.InsertRowInfo = &insert
	opts.RowListID = ""
	if opts.Title == "" {
		opts.Title = d.UniqueTitleForType(typ)
	}
	res := d.AddTile(typ, opts)
	if res == nil {
		return nil
	}
	for _, m := range models {
		d.AddTileSharedModel(res.TileID, m, false)
	}
	return res
}

// DeleteTile removes a tile from the document. The content is told first so
// it can release its shared-model links; a container's embedded tiles are
// deleted with it; the emptied row is removed (leaving a placeholder row
// where a section would otherwise collapse); the tile leaves the map last.
func (d *Content) DeleteTile(id string) {
	defer d.begin("deleteTile")()

	tile := d.tiles[id]
	if tile == nil {
		d.log.Debug("delete tile: not found", zap.String("tileId", id))
		return
	}
	if rl, ok := tile.Content.(types.RemovalListener); ok {
		rl.WillRemoveFromDocument(d.env(id))
	}
	if c, ok := tile.Content.(types.Container); ok {
		for _, eid := range c.RowList().TileIDs() {
			d.DeleteTile(eid)
		}
	}
	if loc, ok := d.locate(id); ok {
		d.editRow(loc.row, func(r *types.Row) { r.RemoveTile(id) })
		if loc.row.IsEmpty() {
			d.deleteRowAddingPlaceholderRowIfAppropriate(loc.rl, loc.row.ID)
		}
	}
	for _, aid := range slices.Clone(d.annoOrder) {
		if slices.Contains(d.annotations[aid].TileIDs, id) {
			d.setAnnotation(aid, nil)
		}
	}
	d.removeTileFromMap(id)
}

// SetRowHeight sets the height of a row at any nesting level. Resizing is
// view state; wrap the call in WithoutUndo to keep it out of the history.
func (d *Content) SetRowHeight(rowID string, height float64) bool {
	defer d.begin("setRowHeight")()
	row := d.rows.Row(rowID)
	for _, cid := range d.containerIDs() {
		if row != nil {
			break
		}
		row = d.rowList(cid).Row(rowID)
	}
	if row == nil {
		return false
	}
	d.setRowHeight(row, height)
	return true
}

// SetTileTitle renames a tile.
func (d *Content) SetTileTitle(id, title string) bool {
	defer d.begin("setTileTitle")()
	tile := d.tiles[id]
	if tile == nil {
		return false
	}
	d.setTileTitle(tile, title)
	return true
}

// checkNesting reports whether tileID may be placed in the row list listID.
func (d *Content) checkNesting(tileID, listID string) bool {
	if listID == "" {
		return true
	}
	if d.isContainerTile(tileID) {
		d.log.Warn("refusing to nest a container tile",
			zap.String("tileId", tileID), zap.String("rowListId", listID))
		return false
	}
	return true
}

// MoveTile moves a tile to the drop target. Left and right drops land in an
// existing row (left at tileIndex). Other drops create a new row at
// RowInsertIndex; when the tile is alone in its row the whole row moves.
// Returns false when the move was refused or the tile is unknown.
func (d *Content) MoveTile(id string, info types.DropRowInfo, tileIndex int) bool {
	defer d.begin("moveTile")()

	src, ok := d.locate(id)
	if !ok {
		d.log.Debug("move tile: not placed", zap.String("tileId", id))
		return false
	}
	if tile := d.tiles[id]; tile != nil && tile.FixedPosition {
		d.log.Warn("move tile: tile has a fixed position", zap.String("tileId", id))
		return false
	}
	dstRL := d.rowList(info.RowListID)
	if dstRL == nil || info.RowListID == id {
		d.log.Warn("move tile: invalid destination", zap.String("tileId", id), zap.String("rowListId", info.RowListID))
		return false
	}
	if !d.checkNesting(id, info.RowListID) {
		return false
	}
	if dstRL != src.rl {
		return d.moveTileAcrossLists(id, src, dstRL, info, tileIndex)
	}

	rl := src.rl
	if info.RowDropLocation == types.DropLeft || info.RowDropLocation == types.DropRight {
		dst, dstIdx := resolveDropRow(rl, info)
		if !d.canDropInto(dst, id) {
			return false
		}
		if info.RowDropLocation == types.DropRight {
			tileIndex = -1
		}
		d.moveTileToRow(rl, id, dstIdx, tileIndex)
		return true
	}

	insert := clampInsert(rl, info.RowInsertIndex)
	srcIdx := rl.RowIndex(src.row.ID)
	if src.row.TileCount() == 1 {
		if insert != srcIdx {
			return d.moveRowToIndex(rl, srcIdx, insert)
		}
		return true
	}
	d.moveTileToNewRow(rl, id, insert)
	return true
}

// canDropInto checks that row exists and may receive tileID.
func (d *Content) canDropInto(row *types.Row, tileID string) bool {
	if row == nil {
		d.log.Debug("drop target row not found", zap.String("tileId", tileID))
		return false
	}
	if row.IsSectionHeader {
		d.log.Warn("refusing to drop onto a section header", zap.String("rowId", row.ID))
		return false
	}
	for _, l := range row.Tiles {
		if t := d.tiles[l.TileID]; t != nil && t.FixedPosition {
			d.log.Warn("refusing to pair a tile with a fixed-position tile", zap.String("rowId", row.ID))
			return false
		}
	}
	return true
}

func clampInsert(rl *types.RowList, index int) int {
	if index < 0 || index > rl.RowCount() {
		return rl.RowCount()
	}
	return index
}

// moveTileAcrossLists moves a tile between the root and a container (or
// between containers).
func (d *Content) moveTileAcrossLists(id string, src location, dstRL *types.RowList, info types.DropRowInfo, tileIndex int) bool {
	layout := src.row.Tiles[src.row.IndexOfTile(id)]
	var dst *types.Row
	if info.RowDropLocation == types.DropLeft || info.RowDropLocation == types.DropRight {
		dst, _ = resolveDropRow(dstRL, info)
		if !d.canDropInto(dst, id) {
			return false
		}
	}

	d.editRow(src.row, func(r *types.Row) { r.RemoveTile(id) })
	if src.row.IsEmpty() {
		d.deleteRowAddingPlaceholderRowIfAppropriate(src.rl, src.row.ID)
	}

	if dst != nil {
		if d.isPlaceholderRow(dst) {
			d.deleteTilesFromRow(dst)
		}
		if info.RowDropLocation == types.DropRight {
			tileIndex = -1
		}
		d.editRow(dst, func(r *types.Row) { r.InsertTile(layout, tileIndex) })
		return true
	}
	row := &types.Row{ID: types.NewID(), Tiles: []types.TileLayout{layout}}
	if layout.IsUserResizable {
		row.Height = src.row.Height
	}
	at := d.insertRow(dstRL, row, clampInsert(dstRL, info.RowInsertIndex))
	d.removeNeighboringPlaceholderRows(dstRL, at)
	return true
}

// MoveRowToIndex moves a root row. Moving to index 0 above a section header
// is refused, as is moving a header.
func (d *Content) MoveRowToIndex(rowIndex, newRowIndex int) bool {
	defer d.begin("moveRow")()
	return d.moveRowToIndex(d.rows, rowIndex, newRowIndex)
}

func (d *Content) moveRowToIndex(rl *types.RowList, rowIndex, newRowIndex int) bool {
	if newRowIndex == 0 {
		if first := rl.RowByIndex(0); first != nil && first.IsSectionHeader {
			d.log.Warn("refusing to move a row above the leading section header")
			return false
		}
	}
	row := rl.RowByIndex(rowIndex)
	if row == nil {
		return false
	}
	if row.IsSectionHeader {
		d.log.Warn("refusing to move a section header", zap.String("rowId", row.ID))
		return false
	}
	target := newRowIndex
	if newRowIndex > rowIndex {
		target--
	}
	d.editRowList(rl, func() {
		rl.DeleteRow(row.ID)
		rl.InsertRow(row, target)
	})
	if newRowIndex <= rowIndex {
		d.addPlaceholderRowIfAppropriate(rl, rowIndex+1)
	} else {
		d.addPlaceholderRowIfAppropriate(rl, rowIndex)
	}
	d.removeNeighboringPlaceholderRows(rl, rl.RowIndex(row.ID))
	return true
}

// moveTileToRow moves a tile into the existing row at rowIndex of the same
// list, or within its own row.
func (d *Content) moveTileToRow(rl *types.RowList, id string, rowIndex, tileIndex int) {
	srcRow := rl.Row(rl.FindRowContainingTile(id))
	dstRow := rl.RowByIndex(rowIndex)
	if srcRow == nil || dstRow == nil || dstRow.IsSectionHeader {
		return
	}
	if srcRow == dstRow {
		dst := tileIndex
		if dst < 0 {
			dst = len(dstRow.Tiles)
		}
		d.editRow(dstRow, func(r *types.Row) { r.MoveTileInRow(id, dst) })
		return
	}
	layout := srcRow.Tiles[srcRow.IndexOfTile(id)]
	if d.isPlaceholderRow(dstRow) {
		d.deleteTilesFromRow(dstRow)
	}
	d.editRow(dstRow, func(r *types.Row) { r.InsertTile(layout, tileIndex) })
	if srcRow.Height > 0 && layout.IsUserResizable && (dstRow.Height == 0 || srcRow.Height > dstRow.Height) {
		d.setRowHeight(dstRow, srcRow.Height)
	}
	d.editRow(srcRow, func(r *types.Row) { r.RemoveTile(id) })
	if srcRow.IsEmpty() {
		d.deleteRowAddingPlaceholderRowIfAppropriate(rl, srcRow.ID)
	}
}

// moveTileToNewRow moves a tile out of its row into a new row at rowIndex.
func (d *Content) moveTileToNewRow(rl *types.RowList, id string, rowIndex int) {
	srcRow := rl.Row(rl.FindRowContainingTile(id))
	if srcRow == nil || d.tiles[id] == nil {
		return
	}
	layout := srcRow.Tiles[srcRow.IndexOfTile(id)]
	dstRow := &types.Row{ID: types.NewID(), Tiles: []types.TileLayout{layout}}
	if layout.IsUserResizable {
		dstRow.Height = srcRow.Height
	}
	at := d.insertRow(rl, dstRow, rowIndex)
	d.removeNeighboringPlaceholderRows(rl, at)

	d.editRow(srcRow, func(r *types.Row) { r.RemoveTile(id) })
	if srcRow.IsEmpty() {
		d.deleteRowAddingPlaceholderRowIfAppropriate(rl, srcRow.ID)
		return
	}
	if !slices.ContainsFunc(srcRow.Tiles, func(l types.TileLayout) bool { return l.IsUserResizable }) {
		d.setRowHeight(srcRow, 0)
	}
}

// MoveTiles moves a selection to a drop target. Tiles are grouped by their
// current row: a whole row is merged into the target row or moved as a
// row; part of a row moves tile by tile. Container tiles are skipped when
// the destination is inside a container; the rest of the batch still moves.
func (d *Content) MoveTiles(items []types.DragTileItem, info types.DropRowInfo) {
	defer d.begin("moveTiles")()

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if info.RowListID != "" && (it.TileID == info.RowListID || !d.checkNesting(it.TileID, info.RowListID)) {
			continue
		}
		ids = append(ids, it.TileID)
	}
	positions := d.ComputeTilePositions(ids)

	dstRL := d.rowList(info.RowListID)
	if dstRL == nil {
		d.log.Warn("move tiles: unknown row list", zap.String("rowListId", info.RowListID))
		return
	}

	type group struct {
		listID string
		row    *types.Row
		ids    []string
	}
	var groups []*group
	for _, p := range positions {
		rl := d.rowList(p.RowList)
		row := rl.RowByIndex(p.RowIndex)
		if n := len(groups); n > 0 && groups[n-1].row == row {
			groups[n-1].ids = append(groups[n-1].ids, p.TileID)
			continue
		}
		groups = append(groups, &group{listID: p.RowList, row: row, ids: []string{p.TileID}})
	}

	sideDrop := info.RowDropLocation == types.DropLeft || info.RowDropLocation == types.DropRight
	for _, g := range groups {
		srcRL := d.rowList(g.listID)
		rowIndex := srcRL.RowIndex(g.row.ID)
		if rowIndex < 0 {
			continue
		}
		if srcRL != dstRL {
			for i, id := range g.ids {
				d.MoveTile(id, info, i)
			}
			continue
		}
		switch {
		case g.row.TileCount() == len(g.ids) && sideDrop:
			dst, dstIdx := resolveDropRow(dstRL, info)
			if dst != nil && rowIndex != dstIdx && !dst.IsSectionHeader {
				d.mergeRow(g.row, info)
			}
		case g.row.TileCount() == len(g.ids):
			insert := clampInsert(dstRL, info.RowInsertIndex)
			if insert < rowIndex || insert > rowIndex+1 {
				d.moveRowToIndex(dstRL, rowIndex, insert)
			}
		case sideDrop:
			for i, id := range g.ids {
				d.MoveTile(id, info, i)
			}
		default:
			insert := clampInsert(dstRL, info.RowInsertIndex)
			for i, id := range g.ids {
				if i == 0 {
					d.moveTileToNewRow(dstRL, id, insert)
				} else {
					d.moveTileToRow(dstRL, id, insert, -1)
				}
			}
		}
	}
}

// mergeRow moves every tile of row into the drop target, keeping order.
func (d *Content) mergeRow(row *types.Row, info types.DropRowInfo) {
	for i, id := range row.TileIDs() {
		d.MoveTile(id, info, i)
	}
}

// ComputeTilePositions locates each id and returns the positions in
// document order, whatever order ids came in. Unknown ids are skipped.
func (d *Content) ComputeTilePositions(ids []string) []types.TilePosition {
	order := make(map[string]int)
	for i, id := range d.TilesInDocumentOrder() {
		order[id] = i
	}
	seen := make(map[string]bool, len(ids))
	positions := make([]types.TilePosition, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		loc, ok := d.locate(id)
		if !ok {
			continue
		}
		positions = append(positions, types.TilePosition{
			TileID:    id,
			RowList:   loc.listID,
			RowIndex:  loc.rl.RowIndex(loc.row.ID),
			TileIndex: loc.row.IndexOfTile(id),
		})
	}
	slices.SortFunc(positions, func(a, b types.TilePosition) int {
		return cmp.Compare(order[a.TileID], order[b.TileID])
	})
	return positions
}
