package document

import (
	"cmp"
	"encoding/json"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// materialize builds a tile from a transfer item. The tile gets the item's
// NewTileID, or a fresh id when the item carries none. Titles are left as
// they were in the source; planCopy renumbers them.
func (d *Content) materialize(item types.DragTileItem) (*types.Tile, error) {
	var snap types.TileSnapshot
	if err := json.Unmarshal([]byte(item.TileContent), &snap); err != nil {
		return nil, err
	}
	content, err := d.contentFromSnapshot(snap.Content)
	if err != nil {
		return nil, err
	}
	id := item.NewTileID
	if id == "" {
		id = types.NewID()
	}
	return &types.Tile{
		ID:            id,
		Title:         snap.Title,
		Display:       snap.Display,
		FixedPosition: snap.FixedPosition,
		Content:       content,
	}, nil
}

// copyPlan splits items into tiles placed in rows and embedded tiles that
// only enter the tile map. Containers are dropped, with their embedded
// tiles, when the destination is itself inside a container.
type copyPlan struct {
	placed   []*types.Tile
	items    []types.DragTileItem // parallel to placed
	embedded []*types.Tile
}

func (d *Content) planCopy(items []types.DragTileItem, rowListID string) copyPlan {
	var plan copyPlan
	skipped := make(map[string]bool)
	missing := make(map[string]bool)
	titles := d.tileTitles()
	for _, item := range items {
		if item.Embedded && skipped[item.RowList] {
			continue
		}
		tile, err := d.materialize(item)
		if err != nil {
			d.log.Warn("skipping malformed transfer item", zap.String("tileId", item.TileID), zap.Error(err))
			missing[cmp.Or(item.NewTileID, item.TileID)] = true
			continue
		}
		if _, isContainer := tile.Content.(types.Container); isContainer && rowListID != "" {
			d.log.Warn("refusing to copy a container tile into a container",
				zap.String("tileId", item.TileID), zap.String("rowListId", rowListID))
			skipped[item.TileID] = true
			continue
		}
		// titles assigned earlier in the batch count as taken
		if tile.Title != "" && d.cfg.UniqueTitles {
			tile.Title = uniqueAmong(tile.Title, titles)
			titles = append(titles, tile.Title)
		}
		if item.Embedded {
			plan.embedded = append(plan.embedded, tile)
			continue
		}
		plan.placed = append(plan.placed, tile)
		plan.items = append(plan.items, item)
	}
	if len(missing) > 0 {
		for _, tile := range plan.placed {
			dropMissingEmbeds(tile, missing)
		}
	}
	return plan
}

// dropMissingEmbeds removes layouts of tiles that failed to materialize
// from a copied container's rows. Rows left empty are deleted.
func dropMissingEmbeds(tile *types.Tile, missing map[string]bool) {
	c, ok := tile.Content.(types.Container)
	if !ok {
		return
	}
	rl := c.RowList()
	for _, row := range rl.Rows() {
		if !slices.ContainsFunc(row.TileIDs(), func(id string) bool { return missing[id] }) {
			continue
		}
		row.RemoveTilesFunc(func(id string) bool { return missing[id] })
		if row.IsEmpty() {
			rl.DeleteRow(row.ID)
		}
	}
}

func (d *Content) rowHeightFor(tile *types.Tile, item types.DragTileItem) float64 {
	if item.RowHeight > 0 {
		return item.RowHeight
	}
	if info, ok := d.reg.ContentInfo(tile.Type()); ok && info.DefaultHeight > 0 {
		return info.DefaultHeight
	}
	return d.cfg.DefaultRowHeight
}

// CopyTilesIntoExistingRow materializes items into the drop row. With a left
// drop the first item ends up leftmost.
func (d *Content) CopyTilesIntoExistingRow(items []types.DragTileItem, info types.DropRowInfo) []types.NewRowTile {
	defer d.begin("copyTiles")()

	rl := d.rowList(info.RowListID)
	if rl == nil {
		d.log.Warn("copy tiles: unknown row list", zap.String("rowListId", info.RowListID))
		return nil
	}
	row, _ := resolveDropRow(rl, info)
	if row == nil || row.IsSectionHeader {
		d.log.Warn("copy tiles: invalid drop row", zap.String("rowDropId", info.RowDropID))
		return nil
	}
	plan := d.planCopy(items, info.RowListID)
	for _, t := range plan.embedded {
		d.putTile(t)
	}

	results := make([]types.NewRowTile, len(plan.placed))
	order := make([]int, len(plan.placed))
	for i := range order {
		order[i] = i
	}
	if info.RowDropLocation == types.DropLeft {
		slices.Reverse(order)
	}
	for _, i := range order {
		tile := plan.placed[i]
		results[i] = d.insertTileInExistingRow(rl, row, tile, info.RowDropLocation, d.rowHeightFor(tile, plan.items[i]))
	}
	return results
}

// CopyTilesIntoNewRows materializes items into new rows starting at
// info.RowInsertIndex (the default insert row when negative). Items that
// shared a source row share a destination row.
func (d *Content) CopyTilesIntoNewRows(items []types.DragTileItem, info types.DropRowInfo) []types.NewRowTile {
	defer d.begin("copyTiles")()

	rl := d.rowList(info.RowListID)
	if rl == nil {
		d.log.Warn("copy tiles: unknown row list", zap.String("rowListId", info.RowListID))
		return nil
	}
	plan := d.planCopy(items, info.RowListID)
	for _, t := range plan.embedded {
		d.putTile(t)
	}

	rowIndex := info.RowInsertIndex
	if rowIndex < 0 || rowIndex > rl.RowCount() {
		rowIndex = d.defaultInsertRow(rl)
	}
	type source struct {
		list  string
		index int
	}
	var (
		results []types.NewRowTile
		last    source
		current *types.Row
		delta   = -1
	)
	for i, tile := range plan.placed {
		item := plan.items[i]
		src := source{item.RowList, item.RowIndex}
		height := d.rowHeightFor(tile, item)
		if current == nil || src != last {
			delta++
			res := d.insertTileInNewRow(rl, tile, rowIndex+delta, height)
			current = rl.Row(res.RowID)
			// a removed placeholder row above shifts the following rows up
			rowIndex = rl.RowIndex(current.ID) - delta
			last = src
			results = append(results, res)
			continue
		}
		results = append(results, d.insertTileInExistingRow(rl, current, tile, types.DropRight, height))
	}
	return results
}

// UserCopyTiles copies into the drop row when it accepts the drop and into
// new rows otherwise.
func (d *Content) UserCopyTiles(items []types.DragTileItem, info types.DropRowInfo) []types.NewRowTile {
	defer d.begin("copyTiles")()

	if rl := d.rowList(info.RowListID); rl != nil {
		if row, _ := resolveDropRow(rl, info); row != nil && row.AcceptsTileDrop(info) {
			return d.CopyTilesIntoExistingRow(items, info)
		}
	}
	return d.CopyTilesIntoNewRows(items, info)
}
