package tiles

import (
	"encoding/json"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// TableType is the content type of table tiles. A table provides the
// dataset it displays.
const TableType = "Table"

// TableContent shows a dataset as a grid.
type TableContent struct {
	ColumnWidths map[string]float64

	initialName string // seeded from the creation title
	// DataSetName mirrors the name of the provided dataset; it is derived
	// state and is not serialized.
	DataSetName string
}

type tableJSON struct {
	Type         string             `json:"type"`
	ColumnWidths map[string]float64 `json:"columnWidths,omitempty"`
}

func (c *TableContent) Type() string { return TableType }

func (c *TableContent) Snapshot() (json.RawMessage, error) {
	return json.Marshal(tableJSON{Type: TableType, ColumnWidths: c.ColumnWidths})
}

func (c *TableContent) ExportJSON(types.ExportOptions) (json.RawMessage, error) {
	return c.Snapshot()
}

// DoPostCreate creates the dataset the table provides unless one is already
// linked.
func (c *TableContent) DoPostCreate(env types.TileEnv) {
	if env.Models == nil {
		return
	}
	for _, m := range env.Models.TileSharedModels(env.TileID) {
		if m.Type == SharedDataSetType {
			return
		}
	}
	name := c.initialName
	if name == "" {
		name = "Table Data"
	}
	env.Models.AddTileSharedModel(env.TileID, NewDataSetModel(name), true)
}

// WillRemoveFromDocument releases the table's shared-model links.
func (c *TableContent) WillRemoveFromDocument(env types.TileEnv) {
	unlinkAll(env)
}

// UpdateAfterSharedModelChanges refreshes the mirrored dataset name.
func (c *TableContent) UpdateAfterSharedModelChanges(model *types.SharedModel) {
	if model != nil && model.Type == SharedDataSetType {
		c.DataSetName = model.Name
	}
}

func tableInfo() types.ContentInfo {
	return types.ContentInfo{
		Type:           TableType,
		TitleBase:      "Table",
		DefaultHeight:  160,
		IsDataProvider: true,
		DefaultContent: func(opts types.DefaultContentOptions) types.TileContent {
			return &TableContent{initialName: opts.Title}
		},
		FromSnapshot: func(raw json.RawMessage) (types.TileContent, error) {
			var j tableJSON
			if err := json.Unmarshal(raw, &j); err != nil {
				return nil, err
			}
			return &TableContent{ColumnWidths: j.ColumnWidths}, nil
		},
	}
}
