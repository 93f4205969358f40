package tiles

import (
	"encoding/json"
	"slices"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// GeometryType is the content type of graph tiles. Graphs consume datasets
// and can be resized by the user.
const GeometryType = "Geometry"

// Point is one plotted point. LinkedTileID is set when the point mirrors a
// point of another tile in the same document.
type Point struct {
	ID           string  `json:"id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	LinkedTileID string  `json:"linkedTileId,omitempty"`
}

// GeometryContent is a set of points on a plane.
type GeometryContent struct {
	Points []Point

	// Linked lists the ids of shared models seen by the last update.
	Linked []string
}

type geometryJSON struct {
	Type   string  `json:"type"`
	Points []Point `json:"points,omitempty"`
}

func (c *GeometryContent) Type() string { return GeometryType }

func (c *GeometryContent) Snapshot() (json.RawMessage, error) {
	return json.Marshal(geometryJSON{Type: GeometryType, Points: c.Points})
}

func (c *GeometryContent) ExportJSON(types.ExportOptions) (json.RawMessage, error) {
	return c.Snapshot()
}

func (c *GeometryContent) WillRemoveFromDocument(env types.TileEnv) {
	unlinkAll(env)
}

func (c *GeometryContent) UpdateAfterSharedModelChanges(model *types.SharedModel) {
	if model != nil && !slices.Contains(c.Linked, model.ID) {
		c.Linked = append(c.Linked, model.ID)
	}
}

// RemapIDs rewrites cross-tile point links; links to tiles outside the copy
// are dropped.
func (c *GeometryContent) RemapIDs(idMap map[string]string) {
	for i, p := range c.Points {
		if p.LinkedTileID == "" {
			continue
		}
		c.Points[i].LinkedTileID = idMap[p.LinkedTileID]
	}
}

func geometryInfo() types.ContentInfo {
	return types.ContentInfo{
		Type:            GeometryType,
		TitleBase:       "Graph",
		DefaultHeight:   320,
		IsDataConsumer:  true,
		IsUserResizable: true,
		DefaultContent: func(types.DefaultContentOptions) types.TileContent {
			return &GeometryContent{}
		},
		FromSnapshot: func(raw json.RawMessage) (types.TileContent, error) {
			var j geometryJSON
			if err := json.Unmarshal(raw, &j); err != nil {
				return nil, err
			}
			return &GeometryContent{Points: j.Points}, nil
		},
	}
}
