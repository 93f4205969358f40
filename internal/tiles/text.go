package tiles

import (
	"encoding/json"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// TextType is the content type of rich text tiles.
const TextType = "Text"

// TextContent is a block of text.
type TextContent struct {
	Text   string
	Format string // "html", "markdown" or empty for plain text
}

type textJSON struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

func (c *TextContent) Type() string { return TextType }

func (c *TextContent) Snapshot() (json.RawMessage, error) {
	return json.Marshal(textJSON{Type: TextType, Text: c.Text, Format: c.Format})
}

func (c *TextContent) ExportJSON(types.ExportOptions) (json.RawMessage, error) {
	return c.Snapshot()
}

func textInfo() types.ContentInfo {
	return types.ContentInfo{
		Type:      TextType,
		TitleBase: "Text",
		DefaultContent: func(types.DefaultContentOptions) types.TileContent {
			return &TextContent{}
		},
		FromSnapshot: func(raw json.RawMessage) (types.TileContent, error) {
			var j textJSON
			if err := json.Unmarshal(raw, &j); err != nil {
				return nil, err
			}
			return &TextContent{Text: j.Text, Format: j.Format}, nil
		},
	}
}
