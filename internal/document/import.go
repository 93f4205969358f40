package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

type importDocument struct {
	Tiles        []json.RawMessage   `json:"tiles"`
	SharedModels []exportSharedModel `json:"sharedModels"`
	Annotations  []*types.Annotation `json:"annotations"`
}

type importTile struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Display       string          `json:"display"`
	FixedPosition bool            `json:"fixedPosition"`
	Content       json.RawMessage `json:"content"`
	Layout        *exportLayout   `json:"layout"`
}

type sectionHeader struct {
	IsSectionHeader bool   `json:"isSectionHeader"`
	SectionID       string `json:"sectionId"`
}

// importer carries the id counters of one import pass.
type importer struct {
	d        *Content
	section  string
	counters map[string]int
}

// Import builds a document from the authored export format. Tiles without
// an id are named {section}_{type}_{N}, with "document" standing in before
// the first section header and N counting per type from 1, restarting at
// every header. Unnamed sections therefore restart the same sequence; a
// repeated id is logged and the later tile replaces the earlier one.
func Import(reg types.ContentRegistry, data []byte, opts ...Option) (*Content, error) {
	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidSnapshot, err)
	}
	d := New(reg, opts...)
	im := &importer{d: d, counters: make(map[string]int)}
	if err := im.importRows(d.rows, doc.Tiles, false); err != nil {
		return nil, err
	}

	for _, sm := range doc.SharedModels {
		im.importSharedModel(sm)
	}
	for _, a := range doc.Annotations {
		if a == nil || slices.ContainsFunc(a.TileIDs, func(id string) bool { return d.tiles[id] == nil }) {
			continue
		}
		c := cloneAnnotation(a)
		if c.ID == "" {
			c.ID = types.NewID()
		}
		d.annotations[c.ID] = c
		d.annoOrder = append(d.annoOrder, c.ID)
	}
	d.repairSections()
	return d, nil
}

func (im *importer) nextID(typ string) string {
	im.counters[typ]++
	section := im.section
	if section == "" {
		section = "document"
	}
	return fmt.Sprintf("%s_%s_%d", section, typ, im.counters[typ])
}

func (im *importer) importRows(rl *types.RowList, entries []json.RawMessage, nested bool) error {
	for i, entry := range entries {
		entry = bytes.TrimSpace(entry)
		raws := []json.RawMessage{entry}
		if len(entry) > 0 && entry[0] == '[' {
			raws = nil
			if err := json.Unmarshal(entry, &raws); err != nil {
				return fmt.Errorf("%w: row %d: %v", types.ErrInvalidSnapshot, i, err)
			}
		}

		row := &types.Row{ID: types.NewID()}
		for _, raw := range raws {
			var it importTile
			if err := json.Unmarshal(raw, &it); err != nil {
				return fmt.Errorf("%w: row %d: %v", types.ErrInvalidSnapshot, i, err)
			}
			var header sectionHeader
			if err := json.Unmarshal(it.Content, &header); err == nil && header.IsSectionHeader {
				im.section = header.SectionID
				clear(im.counters)
				rl.InsertRow(&types.Row{ID: types.NewID(), IsSectionHeader: true, SectionID: header.SectionID}, -1)
				continue
			}
			tile, err := im.importTile(it, nested)
			if err != nil {
				return fmt.Errorf("importing row %d: %w", i, err)
			}
			if tile == nil {
				continue
			}
			if _, placed := im.d.locate(tile.ID); placed || row.HasTile(tile.ID) || rl.FindRowContainingTile(tile.ID) != "" {
				continue
			}
			row.Tiles = append(row.Tiles, im.d.layoutFor(tile))
			row.Height = max(row.Height, im.height(tile, it.Layout))
		}
		if len(row.Tiles) > 0 {
			rl.InsertRow(row, -1)
		}
	}
	return nil
}

func (im *importer) height(tile *types.Tile, layout *exportLayout) float64 {
	if layout != nil && layout.Height > 0 {
		return layout.Height
	}
	if info, ok := im.d.reg.ContentInfo(tile.Type()); ok {
		return info.DefaultHeight
	}
	return 0
}

// importTile creates the tile for an authored entry and stores it in the
// map. Container content brings its own "tiles", imported into its rows.
func (im *importer) importTile(it importTile, nested bool) (*types.Tile, error) {
	typ, err := types.ContentTypeOf(it.Content)
	if err != nil {
		return nil, err
	}
	content, err := im.d.contentFromSnapshot(it.Content)
	if err != nil {
		return nil, err
	}
	id := it.ID
	if id == "" {
		id = im.nextID(typ)
	}
	c, isContainer := content.(types.Container)
	if isContainer && nested {
		im.d.log.Warn("import: skipping container tile nested in a container", zap.String("tileId", id))
		return nil, nil
	}
	if im.d.tiles[id] != nil {
		im.d.log.Warn("import: duplicate tile id", zap.String("tileId", id), zap.String("section", im.section))
	}
	tile := &types.Tile{ID: id, Title: it.Title, Display: it.Display, FixedPosition: it.FixedPosition, Content: content}
	im.d.tiles[id] = tile

	if isContainer {
		var inner struct {
			Tiles []json.RawMessage `json:"tiles"`
		}
		if err := json.Unmarshal(it.Content, &inner); err != nil {
			return nil, fmt.Errorf("%w: container %s: %v", types.ErrInvalidSnapshot, id, err)
		}
		if err := im.importRows(c.RowList(), inner.Tiles, true); err != nil {
			return nil, fmt.Errorf("importing container %s: %w", id, err)
		}
	}
	return tile, nil
}

func (im *importer) importSharedModel(sm exportSharedModel) {
	d := im.d
	if sm.SharedModel == nil {
		return
	}
	model := sm.SharedModel.Clone()
	if model.ID == "" {
		model.ID = types.NewID()
	}
	if _, ok := d.reg.SharedModelInfo(model.Type); !ok {
		d.log.Warn("import: skipping shared model of unknown type",
			zap.String("modelId", model.ID), zap.String("type", model.Type))
		return
	}
	if _, dup := d.models[model.ID]; dup {
		d.log.Warn("import: duplicate shared model id", zap.String("modelId", model.ID))
		return
	}
	entry := &types.SharedModelEntry{Model: model, IndexOfType: d.nextIndexOfType(model.Type)}
	for _, id := range sm.Tiles {
		if d.tiles[id] != nil && !entry.HasTile(id) {
			entry.Tiles = append(entry.Tiles, id)
		}
	}
	if d.tiles[sm.Provider] != nil {
		entry.Provider = sm.Provider
		if !entry.HasTile(sm.Provider) {
			entry.Tiles = append(entry.Tiles, sm.Provider)
		}
	}
	d.models[model.ID] = entry
	d.modelOrder = append(d.modelOrder, model.ID)
	for _, id := range entry.Tiles {
		d.notify(id, model)
	}
}
