package document

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/tiledoc/internal/tiles"
	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

func newDoc(t *testing.T, opts ...Option) *Content {
	t.Helper()
	return New(tiles.NewDefaultRegistry(), opts...)
}

// newObservedDoc returns a document whose log output is captured.
func newObservedDoc(t *testing.T, opts ...Option) (*Content, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return newDoc(t, append(opts, WithLogger(zap.New(core)))...), logs
}

func addTile(t *testing.T, d *Content, typ string, opts AddTileOptions) string {
	t.Helper()
	res := d.AddTile(typ, opts)
	require.NotNil(t, res)
	return res.TileID
}

// rowShape lists the tile ids of each root row; header rows show as
// "#section" and placeholder rows as "_".
func rowShape(d *Content) [][]string {
	var shape [][]string
	for _, row := range d.rows.Rows() {
		switch {
		case row.IsSectionHeader:
			shape = append(shape, []string{"#" + row.SectionID})
		case d.isPlaceholderRow(row):
			shape = append(shape, []string{"_"})
		default:
			shape = append(shape, row.TileIDs())
		}
	}
	return shape
}

// assertExclusiveRows checks that no tile is referenced by two rows and
// that every referenced tile is in the map.
func assertExclusiveRows(t *testing.T, d *Content) {
	t.Helper()
	seen := map[string]string{}
	lists := map[string]*types.RowList{"": d.rows}
	for _, cid := range d.containerIDs() {
		lists[cid] = d.rowList(cid)
	}
	for _, rl := range lists {
		for _, row := range rl.Rows() {
			for _, id := range row.TileIDs() {
				require.NotContains(t, seen, id, "tile %s in rows %s and %s", id, seen[id], row.ID)
				seen[id] = row.ID
				require.NotNil(t, d.tiles[id], "row %s references missing tile %s", row.ID, id)
			}
		}
	}
}

const sectionedDoc = `{
  "tiles": [
    {"content": {"isSectionHeader": true, "sectionId": "intro"}},
    {"content": {"type": "Text", "text": "hello"}},
    {"content": {"isSectionHeader": true, "sectionId": "end"}}
  ]
}`

func importDoc(t *testing.T, data string, opts ...Option) *Content {
	t.Helper()
	d, err := Import(tiles.NewDefaultRegistry(), []byte(data), opts...)
	require.NoError(t, err)
	return d
}
