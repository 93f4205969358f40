package document

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

type exportLayout struct {
	Height float64 `json:"height"`
}

type exportTile struct {
	ID            string          `json:"id,omitempty"`
	Title         string          `json:"title,omitempty"`
	Display       string          `json:"display,omitempty"`
	FixedPosition bool            `json:"fixedPosition,omitempty"`
	Content       json.RawMessage `json:"content"`
	Layout        *exportLayout   `json:"layout,omitempty"`
}

type exportSharedModel struct {
	SharedModel *types.SharedModel `json:"sharedModel"`
	Tiles       []string           `json:"tiles"`
	Provider    string             `json:"provider,omitempty"`
}

type exportDocument struct {
	Tiles        []json.RawMessage   `json:"tiles"`
	SharedModels []exportSharedModel `json:"sharedModels,omitempty"`
	Annotations  []*types.Annotation `json:"annotations,omitempty"`
}

// ExportJSON renders the document in the authored export format: one entry
// per row, a row of several tiles as an array. Section headers, empty rows
// and placeholder rows are left out.
func (d *Content) ExportJSON(opts types.ExportOptions) ([]byte, error) {
	var included []string
	opts.Rows = func(rl *types.RowList) ([]json.RawMessage, error) {
		return d.exportRows(rl, opts, &included)
	}
	tiles, err := d.exportRows(d.rows, opts, &included)
	if err != nil {
		return nil, err
	}
	doc := exportDocument{Tiles: tiles}
	for _, e := range d.SharedModelsUsedByTiles(included) {
		doc.SharedModels = append(doc.SharedModels, exportSharedModel{
			SharedModel: e.Model,
			Tiles:       e.Tiles,
			Provider:    e.Provider,
		})
	}
	inExport := make(map[string]bool, len(included))
	for _, id := range included {
		inExport[id] = true
	}
	for _, a := range d.Annotations() {
		for _, id := range a.TileIDs {
			if inExport[id] {
				doc.Annotations = append(doc.Annotations, a)
				break
			}
		}
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return out, nil
}

func (d *Content) exportRows(rl *types.RowList, opts types.ExportOptions, included *[]string) ([]json.RawMessage, error) {
	out := []json.RawMessage{}
	for _, row := range rl.Rows() {
		if row.IsSectionHeader || row.IsEmpty() || d.isPlaceholderRow(row) {
			continue
		}
		var entries []json.RawMessage
		for _, l := range row.Tiles {
			tile := d.tiles[l.TileID]
			if tile == nil {
				continue
			}
			entry, err := d.exportTile(tile, row, opts)
			if err != nil {
				return nil, err
			}
			*included = append(*included, tile.ID)
			entries = append(entries, entry)
		}
		switch len(entries) {
		case 0:
		case 1:
			out = append(out, entries[0])
		default:
			arr, err := json.Marshal(entries)
			if err != nil {
				return nil, fmt.Errorf("encoding row %s: %w", row.ID, err)
			}
			out = append(out, arr)
		}
	}
	return out, nil
}

func (d *Content) exportTile(tile *types.Tile, row *types.Row, opts types.ExportOptions) (json.RawMessage, error) {
	content, err := tile.Content.ExportJSON(opts)
	if err != nil {
		return nil, fmt.Errorf("exporting tile %s: %w", tile.ID, err)
	}
	et := exportTile{
		Title:         tile.Title,
		Display:       tile.Display,
		FixedPosition: tile.FixedPosition,
		Content:       content,
	}
	if opts.IncludeTileIDs {
		et.ID = tile.ID
	}
	if h := d.exportHeight(tile, row); h > 0 {
		et.Layout = &exportLayout{Height: h}
	}
	return json.Marshal(et)
}

// exportHeight is the row height worth recording for tile: only resizable
// tiles whose row differs from the type's default height.
func (d *Content) exportHeight(tile *types.Tile, row *types.Row) float64 {
	if row.Height == 0 {
		return 0
	}
	info, ok := d.reg.ContentInfo(tile.Type())
	if !ok || !info.IsUserResizable || info.DefaultHeight == row.Height {
		return 0
	}
	return row.Height
}
