package tiles

import (
	"encoding/json"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// PlaceholderContent marks a section that has no real content yet.
type PlaceholderContent struct {
	SectionID string
}

type placeholderJSON struct {
	Type      string `json:"type"`
	SectionID string `json:"sectionId,omitempty"`
}

func (c *PlaceholderContent) Type() string { return types.PlaceholderType }

func (c *PlaceholderContent) Snapshot() (json.RawMessage, error) {
	return json.Marshal(placeholderJSON{Type: types.PlaceholderType, SectionID: c.SectionID})
}

func (c *PlaceholderContent) ExportJSON(types.ExportOptions) (json.RawMessage, error) {
	return c.Snapshot()
}

func placeholderInfo() types.ContentInfo {
	return types.ContentInfo{
		Type: types.PlaceholderType,
		DefaultContent: func(types.DefaultContentOptions) types.TileContent {
			return &PlaceholderContent{}
		},
		FromSnapshot: func(raw json.RawMessage) (types.TileContent, error) {
			var j placeholderJSON
			if err := json.Unmarshal(raw, &j); err != nil {
				return nil, err
			}
			return &PlaceholderContent{SectionID: j.SectionID}, nil
		},
	}
}
