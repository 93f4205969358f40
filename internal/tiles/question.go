package tiles

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// QuestionType is the content type of question tiles, the built-in
// container. A question holds its own rows of embedded tiles.
const QuestionType = "Question"

// QuestionContent embeds a RowList. The embedded tiles themselves live in
// the document tile map.
type QuestionContent struct {
	Version int
	rows    *types.RowList
}

// NewQuestionContent returns a question with no rows.
func NewQuestionContent() *QuestionContent {
	return &QuestionContent{Version: 1, rows: types.NewRowList()}
}

type questionJSON struct {
	Type    string         `json:"type"`
	Version int            `json:"version,omitempty"`
	Rows    *types.RowList `json:"rows"`
}

type questionExportJSON struct {
	Type    string            `json:"type"`
	Version int               `json:"version,omitempty"`
	Tiles   []json.RawMessage `json:"tiles"`
}

func (c *QuestionContent) Type() string { return QuestionType }

// RowList implements types.Container.
func (c *QuestionContent) RowList() *types.RowList { return c.rows }

func (c *QuestionContent) Snapshot() (json.RawMessage, error) {
	return json.Marshal(questionJSON{Type: QuestionType, Version: c.Version, Rows: c.rows})
}

func (c *QuestionContent) ExportJSON(opts types.ExportOptions) (json.RawMessage, error) {
	out := questionExportJSON{Type: QuestionType, Version: c.Version, Tiles: []json.RawMessage{}}
	if opts.Rows != nil {
		tiles, err := opts.Rows(c.rows)
		if err != nil {
			return nil, fmt.Errorf("exporting question rows: %w", err)
		}
		out.Tiles = tiles
	}
	return json.Marshal(out)
}

// RemapIDs rewrites the tile ids referenced by the embedded rows. Row ids
// are replaced too so a copy never shares row identity with its source.
func (c *QuestionContent) RemapIDs(idMap map[string]string) {
	remapped := types.NewRowList()
	for _, row := range c.rows.Rows() {
		nr := row.Clone()
		nr.ID = types.NewID()
		for i, l := range nr.Tiles {
			if id, ok := idMap[l.TileID]; ok {
				nr.Tiles[i].TileID = id
			}
		}
		remapped.InsertRow(nr, -1)
	}
	c.rows = remapped
}

func questionInfo() types.ContentInfo {
	return types.ContentInfo{
		Type:        QuestionType,
		TitleBase:   "Question",
		IsContainer: true,
		DefaultContent: func(types.DefaultContentOptions) types.TileContent {
			return NewQuestionContent()
		},
		FromSnapshot: func(raw json.RawMessage) (types.TileContent, error) {
			j := questionJSON{Rows: types.NewRowList()}
			if err := json.Unmarshal(raw, &j); err != nil {
				return nil, err
			}
			if j.Rows == nil {
				j.Rows = types.NewRowList()
			}
			return &QuestionContent{Version: j.Version, rows: j.Rows}, nil
		},
	}
}
