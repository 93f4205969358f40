package document

import (
	"encoding/json"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// snapshotTile serializes a tile. withID controls whether the id is kept.
func (d *Content) snapshotTile(tile *types.Tile, withID bool) (types.TileSnapshot, error) {
	content, err := tile.Content.Snapshot()
	if err != nil {
		return types.TileSnapshot{}, fmt.Errorf("snapshotting tile %s: %w", tile.ID, err)
	}
	snap := types.TileSnapshot{
		Title:         tile.Title,
		Display:       tile.Display,
		FixedPosition: tile.FixedPosition,
		Content:       content,
	}
	if withID {
		snap.ID = tile.ID
	}
	return snap, nil
}

// remappedContent returns the content snapshot of tile as a fresh copy with
// its embedded ids rewritten through idMap.
func (d *Content) remappedContent(tile *types.Tile, idMap map[string]string) (json.RawMessage, error) {
	raw, err := tile.Content.Snapshot()
	if err != nil {
		return nil, err
	}
	content, err := d.contentFromSnapshot(raw)
	if err != nil {
		return nil, err
	}
	r, ok := content.(types.IDRemapper)
	if !ok {
		return raw, nil
	}
	r.RemapIDs(idMap)
	return content.Snapshot()
}

// transferPositions returns the positions of ids in document order with the
// embedded tiles of selected containers added right after them.
func (d *Content) transferPositions(ids []string) ([]types.TilePosition, map[string]bool) {
	selected := d.ComputeTilePositions(ids)
	chosen := make(map[string]bool, len(selected))
	for _, p := range selected {
		chosen[p.TileID] = true
	}
	embedded := make(map[string]bool)
	var out []types.TilePosition
	for _, p := range selected {
		if embedded[p.TileID] {
			continue
		}
		out = append(out, p)
		if !d.isContainerTile(p.TileID) {
			continue
		}
		rl := d.rowList(p.TileID)
		for ri, row := range rl.Rows() {
			for ti, l := range row.Tiles {
				embedded[l.TileID] = true
				if chosen[l.TileID] {
					out = slices.DeleteFunc(out, func(x types.TilePosition) bool { return x.TileID == l.TileID })
				}
				out = append(out, types.TilePosition{TileID: l.TileID, RowList: p.TileID, RowIndex: ri, TileIndex: ti})
			}
		}
	}
	return out, embedded
}

// BuildTransferItems serializes the tiles ids for a drag or copy. Every
// original id is paired with one fresh id, and the same map is used to
// rewrite ids embedded in content. Unknown ids are skipped.
func (d *Content) BuildTransferItems(ids []string) []types.DragTileItem {
	positions, embedded := d.transferPositions(ids)
	idMap := make(map[string]string, len(positions))
	for _, p := range positions {
		idMap[p.TileID] = types.NewID()
	}

	items := make([]types.DragTileItem, 0, len(positions))
	for _, p := range positions {
		tile := d.tiles[p.TileID]
		if tile == nil {
			continue
		}
		snap, err := d.snapshotTile(tile, false)
		if err == nil {
			snap.Content, err = d.remappedContent(tile, idMap)
		}
		if err != nil {
			d.log.Warn("skipping tile that cannot be serialized", zap.String("tileId", p.TileID), zap.Error(err))
			continue
		}
		payload, err := json.Marshal(snap)
		if err != nil {
			d.log.Warn("skipping tile that cannot be serialized", zap.String("tileId", p.TileID), zap.Error(err))
			continue
		}
		var height float64
		if row := d.rowList(p.RowList).RowByIndex(p.RowIndex); row != nil {
			height = row.Height
		}
		items = append(items, types.DragTileItem{
			RowIndex:    p.RowIndex,
			TileIndex:   p.TileIndex,
			TileID:      p.TileID,
			NewTileID:   idMap[p.TileID],
			RowHeight:   height,
			TileContent: string(payload),
			TileType:    tile.Type(),
			RowList:     p.RowList,
			Embedded:    embedded[p.TileID],
		})
	}
	return items
}

// BuildTransferPackage bundles the items for ids with the shared models they
// use (restricted to the selected tiles) and the annotations anchored only
// to selected tiles.
func (d *Content) BuildTransferPackage(ids []string) *types.TransferPackage {
	items := d.BuildTransferItems(ids)
	inPkg := make(map[string]bool, len(items))
	for _, it := range items {
		inPkg[it.TileID] = true
	}

	pkg := &types.TransferPackage{SourceDocID: d.contentID, Tiles: items, SharedModels: []types.DragSharedModelItem{}}
	for _, mid := range d.modelOrder {
		e := d.models[mid]
		var tileIDs []string
		for _, id := range e.Tiles {
			if inPkg[id] {
				tileIDs = append(tileIDs, id)
			}
		}
		if len(tileIDs) == 0 {
			continue
		}
		content, err := json.Marshal(e.Model)
		if err != nil {
			d.log.Warn("skipping shared model that cannot be serialized", zap.String("modelId", mid), zap.Error(err))
			continue
		}
		pkg.SharedModels = append(pkg.SharedModels, types.DragSharedModelItem{
			ModelID:    mid,
			ProviderID: e.Provider,
			TileIDs:    tileIDs,
			Content:    string(content),
		})
	}
	for _, aid := range d.annoOrder {
		a := d.annotations[aid]
		if len(a.TileIDs) > 0 && !slices.ContainsFunc(a.TileIDs, func(id string) bool { return !inPkg[id] }) {
			pkg.Annotations = append(pkg.Annotations, *cloneAnnotation(a))
		}
	}
	return pkg
}

// IsSameDocument reports whether pkg was built from this loaded instance.
func (d *Content) IsSameDocument(pkg *types.TransferPackage) bool {
	return pkg != nil && pkg.SourceDocID == d.contentID
}

// rekeyCollisions gives fresh ids to items whose NewTileID is already in use,
// as happens when the same package is received twice. Content referring to
// the old new-ids is rewritten.
func (d *Content) rekeyCollisions(items []types.DragTileItem) []types.DragTileItem {
	if !slices.ContainsFunc(items, func(it types.DragTileItem) bool { return d.tiles[it.NewTileID] != nil }) {
		return items
	}
	d.log.Debug("transfer ids already in use, assigning fresh ids")
	rekey := make(map[string]string, len(items))
	for _, it := range items {
		rekey[it.NewTileID] = types.NewID()
	}
	out := make([]types.DragTileItem, len(items))
	for i, it := range items {
		it.NewTileID = rekey[it.NewTileID]
		var snap types.TileSnapshot
		if err := json.Unmarshal([]byte(it.TileContent), &snap); err == nil {
			if content, err := d.contentFromSnapshot(snap.Content); err == nil {
				if r, ok := content.(types.IDRemapper); ok {
					r.RemapIDs(rekey)
					if raw, err := content.Snapshot(); err == nil {
						snap.Content = raw
						if payload, err := json.Marshal(snap); err == nil {
							it.TileContent = string(payload)
						}
					}
				}
			}
		}
		out[i] = it
	}
	return out
}

// HandleDragCopyTiles receives a transfer package: it copies the tiles to
// the drop target, duplicates or relinks their shared models and copies
// their annotations. Returns where the placed tiles landed.
func (d *Content) HandleDragCopyTiles(pkg *types.TransferPackage, info types.DropRowInfo) []types.NewRowTile {
	defer d.begin("copyTiles")()

	if pkg == nil || len(pkg.Tiles) == 0 {
		return nil
	}
	items := d.rekeyCollisions(pkg.Tiles)
	results := d.UserCopyTiles(items, info)

	newIDs := make(map[string]string, len(items))
	for _, it := range items {
		if d.tiles[it.NewTileID] != nil {
			newIDs[it.TileID] = it.NewTileID
		}
	}
	for _, sm := range pkg.SharedModels {
		d.receiveSharedModel(sm, newIDs)
	}
	for _, a := range pkg.Annotations {
		var anchors []string
		for _, id := range a.TileIDs {
			if nid, ok := newIDs[id]; ok {
				anchors = append(anchors, nid)
			}
		}
		if len(anchors) != len(a.TileIDs) {
			continue
		}
		aid := types.NewID()
		d.setAnnotation(aid, &types.Annotation{ID: aid, TileIDs: anchors, Data: slices.Clone(a.Data)})
	}
	return results
}

func (d *Content) receiveSharedModel(sm types.DragSharedModelItem, newIDs map[string]string) {
	var model types.SharedModel
	if err := json.Unmarshal([]byte(sm.Content), &model); err != nil {
		d.log.Warn("skipping unparsable shared model", zap.String("modelId", sm.ModelID), zap.Error(err))
		return
	}
	if model.ID == "" {
		model.ID = sm.ModelID
	}
	info, ok := d.reg.SharedModelInfo(model.Type)
	if !ok {
		d.log.Warn("skipping shared model of unknown type", zap.String("modelId", sm.ModelID), zap.String("type", model.Type))
		return
	}

	var tiles []string
	for _, id := range sm.TileIDs {
		if nid, ok := newIDs[id]; ok {
			tiles = append(tiles, nid)
		}
	}
	if len(tiles) == 0 {
		return
	}
	newProvider := newIDs[sm.ProviderID]

	existing := d.models[model.ID]
	switch {
	case info.Duplicate && newProvider != "":
		copied := model.Clone()
		copied.ID = types.NewID()
		if info.HasName && copied.Name != "" {
			copied.Name = d.UniqueSharedModelName(copied.Name)
		}
		for _, id := range tiles {
			d.AddTileSharedModel(id, copied, id == newProvider)
		}
	case existing != nil:
		for _, id := range tiles {
			d.AddTileSharedModel(id, existing.Model, false)
		}
	default:
		d.log.Debug("shared model not relinked", zap.String("modelId", model.ID))
	}
}

// DuplicateTiles copies ids within the document into new rows below the
// last selected row.
func (d *Content) DuplicateTiles(ids []string) []types.NewRowTile {
	defer d.begin("duplicateTiles")()

	positions := d.ComputeTilePositions(ids)
	if len(positions) == 0 {
		return nil
	}
	last := positions[len(positions)-1]
	// an embedded tile whose container is selected duplicates with it
	if last.RowList != "" && slices.ContainsFunc(positions, func(p types.TilePosition) bool { return p.TileID == last.RowList }) {
		last = types.TilePosition{RowIndex: d.rows.RowIndex(d.rows.FindRowContainingTile(last.RowList))}
	}
	info := types.InsertAt(last.RowIndex + 1)
	info.RowListID = last.RowList
	return d.HandleDragCopyTiles(d.BuildTransferPackage(ids), info)
}

// AllLinkedTileIDs returns ids together with every tile connected to them
// through shared models or annotations, transitively, in document order.
func (d *Content) AllLinkedTileIDs(ids []string) []string {
	seen := make(map[string]bool)
	queue := slices.Clone(ids)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] || d.tiles[id] == nil {
			continue
		}
		seen[id] = true
		for _, mid := range d.modelOrder {
			if e := d.models[mid]; e.HasTile(id) {
				queue = append(queue, e.Tiles...)
			}
		}
		for _, aid := range d.annoOrder {
			if a := d.annotations[aid]; slices.Contains(a.TileIDs, id) {
				queue = append(queue, a.TileIDs...)
			}
		}
	}
	var out []string
	for _, id := range d.TilesInDocumentOrder() {
		if seen[id] {
			out = append(out, id)
		}
	}
	return out
}
