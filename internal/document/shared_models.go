package document

import (
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/internal/tiles"
	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// AddSharedModel registers model and returns a copy of its entry.
// Registering a model id that is already known leaves the existing entry
// untouched; the IndexOfType is assigned only here, on first registration.
func (d *Content) AddSharedModel(model *types.SharedModel) *types.SharedModelEntry {
	defer d.begin("addSharedModel")()
	return shallowEntry(d.addSharedModel(model))
}

func (d *Content) addSharedModel(model *types.SharedModel) *types.SharedModelEntry {
	if e, ok := d.models[model.ID]; ok {
		return e
	}
	tiles.MustSharedModelInfo(d.reg, model.Type)
	e := &types.SharedModelEntry{Model: model, IndexOfType: d.nextIndexOfType(model.Type)}
	d.setEntry(model.ID, e)
	return e
}

// nextIndexOfType is the smallest non-negative index unused by entries of
// typ.
func (d *Content) nextIndexOfType(typ string) int {
	used := make(map[int]bool)
	for _, e := range d.models {
		if e.Model.Type == typ {
			used[e.IndexOfType] = true
		}
	}
	i := 0
	for used[i] {
		i++
	}
	return i
}

// AddTileSharedModel links tileID to model, registering the model first if
// needed. Linking twice is a no-op. The tile's content is notified through
// its SharedModelListener hook.
func (d *Content) AddTileSharedModel(tileID string, model *types.SharedModel, isProvider bool) {
	defer d.begin("addTileSharedModel")()

	entry := d.addSharedModel(model)
	if entry.HasTile(tileID) && (!isProvider || entry.Provider == tileID) {
		return
	}
	next := shallowEntry(entry)
	if !next.HasTile(tileID) {
		next.Tiles = append(next.Tiles, tileID)
	}
	if isProvider {
		next.Provider = tileID
	}
	d.setEntry(model.ID, next)
	d.notify(tileID, entry.Model)
}

// RemoveTileSharedModel unlinks tileID from model. The entry itself stays
// registered, even when no tile uses it any more.
func (d *Content) RemoveTileSharedModel(tileID string, model *types.SharedModel) {
	defer d.begin("removeTileSharedModel")()

	entry, ok := d.models[model.ID]
	if !ok {
		d.log.Warn("unlink: shared model not registered",
			zap.String("modelId", model.ID), zap.String("tileId", tileID))
		return
	}
	if !entry.HasTile(tileID) && entry.Provider != tileID {
		return
	}
	next := shallowEntry(entry)
	next.Tiles = slices.DeleteFunc(next.Tiles, func(id string) bool { return id == tileID })
	if next.Provider == tileID {
		next.Provider = ""
	}
	d.setEntry(model.ID, next)
	d.notify(tileID, entry.Model)
}

// shallowEntry copies the link bookkeeping of e; the model is shared.
func shallowEntry(e *types.SharedModelEntry) *types.SharedModelEntry {
	c := *e
	c.Tiles = slices.Clone(e.Tiles)
	return &c
}

func (d *Content) notify(tileID string, model *types.SharedModel) {
	tile := d.tiles[tileID]
	if tile == nil {
		return
	}
	if l, ok := tile.Content.(types.SharedModelListener); ok {
		l.UpdateAfterSharedModelChanges(model)
	}
}

// TileSharedModels returns the models tileID is linked to, in registration
// order.
func (d *Content) TileSharedModels(tileID string) []*types.SharedModel {
	var out []*types.SharedModel
	for _, id := range d.modelOrder {
		if e := d.models[id]; e.HasTile(tileID) {
			out = append(out, e.Model)
		}
	}
	return out
}

// SharedModelsByType returns the registered models of typ in registration
// order.
func (d *Content) SharedModelsByType(typ string) []*types.SharedModel {
	var out []*types.SharedModel
	for _, id := range d.modelOrder {
		if e := d.models[id]; e.Model.Type == typ {
			out = append(out, e.Model)
		}
	}
	return out
}

// FindFirstSharedModelByType returns the first registered model of typ, or
// with providerID set the first one that tile provides.
func (d *Content) FindFirstSharedModelByType(typ, providerID string) *types.SharedModel {
	for _, id := range d.modelOrder {
		e := d.models[id]
		if e.Model.Type != typ {
			continue
		}
		if providerID == "" || e.Provider == providerID {
			return e.Model
		}
	}
	return nil
}

// SharedModelEntry returns a copy of the entry for modelID.
func (d *Content) SharedModelEntry(modelID string) (*types.SharedModelEntry, bool) {
	e, ok := d.models[modelID]
	if !ok {
		return nil, false
	}
	return shallowEntry(e), true
}

// SharedModelEntries returns copies of all entries in registration order.
func (d *Content) SharedModelEntries() []*types.SharedModelEntry {
	out := make([]*types.SharedModelEntry, 0, len(d.modelOrder))
	for _, id := range d.modelOrder {
		out = append(out, shallowEntry(d.models[id]))
	}
	return out
}

// SharedModelsUsedByTiles returns the entries used by any of ids.
func (d *Content) SharedModelsUsedByTiles(ids []string) []*types.SharedModelEntry {
	var out []*types.SharedModelEntry
	for _, mid := range d.modelOrder {
		e := d.models[mid]
		if slices.ContainsFunc(ids, e.HasTile) {
			out = append(out, shallowEntry(e))
		}
	}
	return out
}

// PruneOrphanedSharedModels removes every entry no tile uses and returns the
// removed model ids.
func (d *Content) PruneOrphanedSharedModels() []string {
	defer d.begin("pruneSharedModels")()
	var removed []string
	for _, id := range slices.Clone(d.modelOrder) {
		if d.models[id].IsOrphaned() {
			d.setEntry(id, nil)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		d.log.Debug("pruned orphaned shared models", zap.Strings("modelIds", removed))
	}
	return removed
}
