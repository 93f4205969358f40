package types

import "encoding/json"

// DropLocation says where a drop lands relative to the target row.
type DropLocation string

// Drop locations. Left and right land inside the target row; top, bottom and
// the empty location create a new row at RowInsertIndex.
const (
	DropNone   DropLocation = ""
	DropLeft   DropLocation = "left"
	DropRight  DropLocation = "right"
	DropTop    DropLocation = "top"
	DropBottom DropLocation = "bottom"
)

// DropRowInfo describes a drop target. RowDropIndex is -1 when no existing
// row is targeted; RowDropID wins over RowDropIndex when both are set.
type DropRowInfo struct {
	RowInsertIndex  int          `json:"rowInsertIndex"`
	RowDropIndex    int          `json:"rowDropIndex"`
	RowDropID       string       `json:"rowDropId,omitempty"`
	RowDropLocation DropLocation `json:"rowDropLocation,omitempty"`
	// RowListID names the container tile whose rows are targeted; empty
	// targets the document itself.
	RowListID string `json:"rowListId,omitempty"`
}

// InsertAt returns a DropRowInfo creating a new row at index.
func InsertAt(index int) DropRowInfo {
	return DropRowInfo{RowInsertIndex: index, RowDropIndex: -1}
}

// DropInto returns a DropRowInfo landing in the row rowID at loc.
func DropInto(rowID string, loc DropLocation) DropRowInfo {
	return DropRowInfo{RowInsertIndex: -1, RowDropIndex: -1, RowDropID: rowID, RowDropLocation: loc}
}

// TilePosition locates a tile. RowList is the id of the owning container
// tile, or "" for the document.
type TilePosition struct {
	TileID    string
	RowList   string
	RowIndex  int
	TileIndex int
}

// DragTileItem is one serialized tile in a transfer.
type DragTileItem struct {
	RowIndex    int     `json:"rowIndex"`
	TileIndex   int     `json:"tileIndex"`
	TileID      string  `json:"tileId"`
	NewTileID   string  `json:"newTileId,omitempty"`
	RowHeight   float64 `json:"rowHeight,omitempty"`
	TileContent string  `json:"tileContent"` // JSON TileSnapshot without id
	TileType    string  `json:"tileType"`
	RowList     string  `json:"rowList,omitempty"`
	Embedded    bool    `json:"embedded,omitempty"`
}

// DragSharedModelItem is one shared model carried by a transfer.
type DragSharedModelItem struct {
	ModelID    string   `json:"modelId"`
	ProviderID string   `json:"providerId,omitempty"`
	TileIDs    []string `json:"tileIds"`
	Content    string   `json:"content"` // JSON SharedModel
}

// Annotation is an object anchored to one or more tiles, e.g. an arrow
// between two tiles.
type Annotation struct {
	ID      string          `json:"id"`
	TileIDs []string        `json:"tileIds"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// TransferPackage is the self-contained description of a tile selection
// produced on drag or copy.
type TransferPackage struct {
	SourceDocID  string                `json:"sourceDocId"`
	Tiles        []DragTileItem        `json:"tiles"`
	SharedModels []DragSharedModelItem `json:"sharedModels"`
	Annotations  []Annotation          `json:"annotations,omitempty"`
}

// NewRowTile reports where a tile was placed.
type NewRowTile struct {
	RowID  string
	TileID string
}
