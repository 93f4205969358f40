package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/tiledoc/internal/tiles"
)

func TestUniqueTitle(t *testing.T) {
	d := newDoc(t)
	for _, title := range []string{"Table 1", "Table 3", "Notes", "Graph  2"} {
		addTile(t, d, tiles.TextType, AddTileOptions{Title: title})
	}

	tests := []struct {
		in   string
		want string
	}{
		{"Table 1", "Table 4"},
		{"Table 3", "Table 4"},
		{"Table", "Table 4"},
		{"Table 5", "Table 5"},
		{"Notes", "Notes 1"},
		{"Notes 7", "Notes 7"},
		{"Graph 2", "Graph 3"},
		{"Drawing", "Drawing"},
		{"Table10", "Table10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, d.UniqueTitle(tt.in))
		})
	}
}

func TestUniqueTitleForType(t *testing.T) {
	d := newDoc(t)
	assert.Equal(t, "Graph 1", d.UniqueTitleForType(tiles.GeometryType))
	addTile(t, d, tiles.GeometryType, AddTileOptions{Title: d.UniqueTitleForType(tiles.GeometryType)})
	assert.Equal(t, "Graph 2", d.UniqueTitleForType(tiles.GeometryType))
	assert.Equal(t, "Table 1", d.UniqueTitleForType(tiles.TableType))
	assert.Panics(t, func() { d.UniqueTitleForType("Nope") })
}

func TestAddTileAfterGeneratesTitleAndLinks(t *testing.T) {
	d := newDoc(t)
	table := addTile(t, d, tiles.TableType, AddTileOptions{})
	last := addTile(t, d, tiles.TextType, AddTileOptions{})
	ds := d.TileSharedModels(table)

	res := d.AddTileAfter(tiles.GeometryType, table, ds, AddTileOptions{})
	if assert.NotNil(t, res) {
		assert.Equal(t, [][]string{{table}, {res.TileID}, {last}}, rowShape(d))
		assert.Equal(t, "Graph 1", d.Tile(res.TileID).Title)
		assert.Equal(t, ds, d.TileSharedModels(res.TileID))
	}
	assert.Nil(t, d.AddTileAfter(tiles.TextType, "missing", nil, AddTileOptions{}))
}
