package document

import (
	"encoding/json"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// Snapshot is the persisted form of a document.
type Snapshot struct {
	Rows         *types.RowList                `json:"rows"`
	Tiles        map[string]types.TileSnapshot `json:"tileMap"`
	SharedModels []*types.SharedModelEntry     `json:"sharedModels"`
	Annotations  []*types.Annotation           `json:"annotations,omitempty"`
}

// Snapshot captures the document state. The result shares nothing with the
// document.
func (d *Content) Snapshot() (*Snapshot, error) {
	snap := &Snapshot{
		Rows:         cloneRowList(d.rows),
		Tiles:        make(map[string]types.TileSnapshot, len(d.tiles)),
		SharedModels: make([]*types.SharedModelEntry, 0, len(d.modelOrder)),
		Annotations:  d.Annotations(),
	}
	for id, tile := range d.tiles {
		ts, err := d.snapshotTile(tile, true)
		if err != nil {
			return nil, err
		}
		snap.Tiles[id] = ts
	}
	for _, id := range d.modelOrder {
		snap.SharedModels = append(snap.SharedModels, d.models[id].Clone())
	}
	return snap, nil
}

// SnapshotJSON returns the serialized snapshot.
func (d *Content) SnapshotJSON() ([]byte, error) {
	snap, err := d.Snapshot()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding document snapshot: %w", err)
	}
	return data, nil
}

func cloneRowList(rl *types.RowList) *types.RowList {
	out := types.NewRowList()
	for _, row := range rl.Rows() {
		out.InsertRow(row.Clone(), -1)
	}
	return out
}

// Load builds a document from serialized snapshot data. Tiles whose content
// cannot be parsed are skipped with a warning along with their layouts;
// sections left without content get placeholder rows.
func Load(reg types.ContentRegistry, data []byte, opts ...Option) (*Content, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidSnapshot, err)
	}
	return FromSnapshot(reg, &snap, opts...)
}

// FromSnapshot builds a document from an already decoded snapshot.
func FromSnapshot(reg types.ContentRegistry, snap *Snapshot, opts ...Option) (*Content, error) {
	d := New(reg, opts...)

	for id, ts := range snap.Tiles {
		content, err := d.contentFromSnapshot(ts.Content)
		if err != nil {
			d.log.Warn("skipping tile with unreadable content", zap.String("tileId", id), zap.Error(err))
			continue
		}
		d.tiles[id] = &types.Tile{
			ID:            id,
			Title:         ts.Title,
			Display:       ts.Display,
			FixedPosition: ts.FixedPosition,
			Content:       content,
		}
	}
	if snap.Rows != nil {
		d.rows = cloneRowList(snap.Rows)
	}
	d.pruneLayouts(d.rows)
	for _, cid := range d.containerIDs() {
		d.pruneLayouts(d.rowList(cid))
	}

	for _, e := range snap.SharedModels {
		if e == nil || e.Model == nil || e.Model.ID == "" {
			continue
		}
		if _, ok := reg.SharedModelInfo(e.Model.Type); !ok {
			d.log.Warn("skipping shared model of unknown type",
				zap.String("modelId", e.Model.ID), zap.String("type", e.Model.Type))
			continue
		}
		entry := e.Clone()
		entry.Tiles = slices.DeleteFunc(entry.Tiles, func(id string) bool { return d.tiles[id] == nil })
		if d.tiles[entry.Provider] == nil {
			entry.Provider = ""
		}
		d.models[entry.Model.ID] = entry
		d.modelOrder = append(d.modelOrder, entry.Model.ID)
	}
	for _, a := range snap.Annotations {
		if a == nil || a.ID == "" || slices.ContainsFunc(a.TileIDs, func(id string) bool { return d.tiles[id] == nil }) {
			continue
		}
		d.annotations[a.ID] = cloneAnnotation(a)
		d.annoOrder = append(d.annoOrder, a.ID)
	}

	d.repairSections()
	for _, id := range d.modelOrder {
		e := d.models[id]
		for _, tid := range e.Tiles {
			d.notify(tid, e.Model)
		}
	}
	return d, nil
}

// pruneLayouts drops layouts naming tiles that are not in the map and the
// non-header rows left empty by that.
func (d *Content) pruneLayouts(rl *types.RowList) {
	for _, row := range rl.Rows() {
		row.RemoveTilesFunc(func(id string) bool { return d.tiles[id] == nil })
		if row.IsEmpty() {
			rl.DeleteRow(row.ID)
		}
	}
}

// CloneWithUniqueIDs returns a snapshot of the document in which every tile,
// row, shared model and annotation has a fresh id. References between them,
// including ids inside tile content, follow the new ids.
func (d *Content) CloneWithUniqueIDs() (*Snapshot, error) {
	idMap := make(map[string]string, len(d.tiles))
	for id := range d.tiles {
		idMap[id] = types.NewID()
	}

	snap := &Snapshot{
		Rows:         remapRowList(d.rows, idMap),
		Tiles:        make(map[string]types.TileSnapshot, len(d.tiles)),
		SharedModels: make([]*types.SharedModelEntry, 0, len(d.modelOrder)),
	}
	for id, tile := range d.tiles {
		ts, err := d.snapshotTile(tile, false)
		if err != nil {
			return nil, err
		}
		if ts.Content, err = d.remappedContent(tile, idMap); err != nil {
			return nil, fmt.Errorf("remapping tile %s: %w", id, err)
		}
		ts.ID = idMap[id]
		snap.Tiles[ts.ID] = ts
	}
	for _, mid := range d.modelOrder {
		e := d.models[mid].Clone()
		e.Model.ID = types.NewID()
		for i, id := range e.Tiles {
			e.Tiles[i] = idMap[id]
		}
		e.Provider = idMap[e.Provider]
		snap.SharedModels = append(snap.SharedModels, e)
	}
	for _, a := range d.Annotations() {
		a.ID = types.NewID()
		for i, id := range a.TileIDs {
			a.TileIDs[i] = idMap[id]
		}
		snap.Annotations = append(snap.Annotations, a)
	}
	return snap, nil
}

func remapRowList(rl *types.RowList, idMap map[string]string) *types.RowList {
	out := types.NewRowList()
	for _, row := range rl.Rows() {
		nr := row.Clone()
		nr.ID = types.NewID()
		for i, l := range nr.Tiles {
			nr.Tiles[i].TileID = idMap[l.TileID]
		}
		out.InsertRow(nr, -1)
	}
	return out
}
