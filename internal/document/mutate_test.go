package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/tiledoc/internal/tiles"
	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

func TestAddTile(t *testing.T) {
	d := newDoc(t)

	text := d.AddTile(tiles.TextType, AddTileOptions{Title: "Intro"})
	require.NotNil(t, text)
	table := d.AddTile(tiles.TableType, AddTileOptions{})
	require.NotNil(t, table)

	assert.Equal(t, [][]string{{text.TileID}, {table.TileID}}, rowShape(d))
	assert.Equal(t, "Intro", d.Tile(text.TileID).Title)
	assert.Equal(t, float64(160), d.rows.Row(table.RowID).Height, "row takes the type's default height")

	// post-create hook: the table provides a fresh dataset
	models := d.TileSharedModels(table.TileID)
	require.Len(t, models, 1)
	assert.Equal(t, tiles.SharedDataSetType, models[0].Type)
	entry, ok := d.SharedModelEntry(models[0].ID)
	require.True(t, ok)
	assert.Equal(t, table.TileID, entry.Provider)
	assertExclusiveRows(t, d)
}

func TestAddTileWithInsertRowInfo(t *testing.T) {
	d := newDoc(t)
	first := addTile(t, d, tiles.TextType, AddTileOptions{})
	second := addTile(t, d, tiles.TextType, AddTileOptions{})
	firstRow := d.rows.FindRowContainingTile(first)

	tests := []struct {
		name string
		info types.DropRowInfo
		want func(id string) [][]string
	}{
		{
			name: "new row at top",
			info: types.InsertAt(0),
			want: func(id string) [][]string { return [][]string{{id}, {first}, {second}} },
		},
		{
			name: "left of existing row",
			info: types.DropInto(firstRow, types.DropLeft),
			want: func(id string) [][]string { return [][]string{{id, first}, {second}} },
		},
		{
			name: "right of existing row",
			info: types.DropInto(firstRow, types.DropRight),
			want: func(id string) [][]string { return [][]string{{first, id}, {second}} },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.info
			res := d.AddTile(tiles.TextType, AddTileOptions{InsertRowInfo: &info})
			require.NotNil(t, res)
			assert.Equal(t, tt.want(res.TileID), rowShape(d))
			assert.Equal(t, d.rows.FindRowContainingTile(res.TileID), res.RowID)
			require.NoError(t, d.Undo())
			assert.Equal(t, [][]string{{first}, {second}}, rowShape(d))
		})
	}
}

func TestAddTilePanicsOnUnknownType(t *testing.T) {
	d := newDoc(t)
	assert.Panics(t, func() { d.AddTile("Nope", AddTileOptions{}) })
	assert.Zero(t, d.TileCount())
	assert.Zero(t, d.RowCount())
	assert.False(t, d.CanUndo())
}

func TestContainerNesting(t *testing.T) {
	d, logs := newObservedDoc(t)
	q := addTile(t, d, tiles.QuestionType, AddTileOptions{})
	other := addTile(t, d, tiles.QuestionType, AddTileOptions{})

	t.Run("add into container refused", func(t *testing.T) {
		res := d.AddTile(tiles.QuestionType, AddTileOptions{RowListID: q})
		assert.Nil(t, res)
		assert.Equal(t, 1, logs.FilterMessage("add tile: refusing to nest a container tile").Len())
	})

	t.Run("add plain tile into container", func(t *testing.T) {
		res := d.AddTile(tiles.TextType, AddTileOptions{RowListID: q})
		require.NotNil(t, res)
		rows := d.EmbeddedRows(q)
		require.Len(t, rows, 1)
		assert.Equal(t, []string{res.TileID}, rows[0].TileIDs())
		assert.Empty(t, d.rows.FindRowContainingTile(res.TileID))
	})

	t.Run("move container into container refused", func(t *testing.T) {
		info := types.InsertAt(0)
		info.RowListID = q
		assert.False(t, d.MoveTile(other, info, 0))
		assert.NotEmpty(t, d.rows.FindRowContainingTile(other))
	})

	t.Run("batch move skips only the container", func(t *testing.T) {
		text := addTile(t, d, tiles.TextType, AddTileOptions{})
		info := types.InsertAt(-1)
		info.RowListID = q
		d.MoveTiles([]types.DragTileItem{{TileID: other}, {TileID: text}}, info)
		assert.NotEmpty(t, d.rows.FindRowContainingTile(other))
		assert.Empty(t, d.rows.FindRowContainingTile(text))
		assert.NotEmpty(t, d.rowList(q).FindRowContainingTile(text))
	})
	assertExclusiveRows(t, d)
}

func TestMoveTile(t *testing.T) {
	setup := func(t *testing.T) (*Content, []string) {
		d := newDoc(t)
		a := addTile(t, d, tiles.TextType, AddTileOptions{})
		b := addTile(t, d, tiles.TextType, AddTileOptions{})
		c := addTile(t, d, tiles.TextType, AddTileOptions{})
		return d, []string{a, b, c}
	}

	t.Run("right into another row", func(t *testing.T) {
		d, ids := setup(t)
		target := d.rows.FindRowContainingTile(ids[0])
		require.True(t, d.MoveTile(ids[2], types.DropInto(target, types.DropRight), 0))
		assert.Equal(t, [][]string{{ids[0], ids[2]}, {ids[1]}}, rowShape(d))
	})

	t.Run("left at index", func(t *testing.T) {
		d, ids := setup(t)
		target := d.rows.FindRowContainingTile(ids[0])
		require.True(t, d.MoveTile(ids[1], types.DropInto(target, types.DropRight), 0))
		require.True(t, d.MoveTile(ids[2], types.DropInto(target, types.DropLeft), 1))
		assert.Equal(t, [][]string{{ids[0], ids[2], ids[1]}}, rowShape(d))
	})

	t.Run("single tile row moves as a row", func(t *testing.T) {
		d, ids := setup(t)
		rowID := d.rows.FindRowContainingTile(ids[2])
		require.True(t, d.MoveTile(ids[2], types.InsertAt(0), 0))
		assert.Equal(t, [][]string{{ids[2]}, {ids[0]}, {ids[1]}}, rowShape(d))
		assert.Equal(t, rowID, d.rows.FindRowContainingTile(ids[2]), "row identity is kept")
	})

	t.Run("tile out of shared row into new row", func(t *testing.T) {
		d, ids := setup(t)
		target := d.rows.FindRowContainingTile(ids[0])
		require.True(t, d.MoveTile(ids[1], types.DropInto(target, types.DropRight), 0))
		require.True(t, d.MoveTile(ids[1], types.InsertAt(2), 0))
		assert.Equal(t, [][]string{{ids[0]}, {ids[2]}, {ids[1]}}, rowShape(d))
	})

	t.Run("fixed position tile refused", func(t *testing.T) {
		d, ids := setup(t)
		d.tiles[ids[0]].FixedPosition = true
		assert.False(t, d.MoveTile(ids[0], types.InsertAt(3), 0))
		target := d.rows.FindRowContainingTile(ids[0])
		assert.False(t, d.MoveTile(ids[1], types.DropInto(target, types.DropRight), 0))
		assert.Equal(t, [][]string{{ids[0]}, {ids[1]}, {ids[2]}}, rowShape(d))
	})

	t.Run("unknown tile", func(t *testing.T) {
		d, _ := setup(t)
		assert.False(t, d.MoveTile("missing", types.InsertAt(0), 0))
	})
}

func TestMoveRejectedAroundSectionHeaders(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	d := importDoc(t, sectionedDoc, WithLogger(zap.New(core)))

	header := d.rows.RowByIndex(0)
	require.True(t, header.IsSectionHeader)

	assert.False(t, d.MoveTile("intro_Text_1", types.DropInto(header.ID, types.DropRight), 0))
	assert.False(t, d.MoveRowToIndex(1, 0))
	assert.False(t, d.MoveRowToIndex(0, 2), "headers never move")
	assert.Equal(t, [][]string{{"#intro"}, {"intro_Text_1"}, {"#end"}, {"_"}}, rowShape(d))
	assert.Equal(t, 3, logs.Len())
}

func TestDeleteTileRepairsSections(t *testing.T) {
	d := importDoc(t, sectionedDoc)
	require.Equal(t, [][]string{{"#intro"}, {"intro_Text_1"}, {"#end"}, {"_"}}, rowShape(d))

	d.DeleteTile("intro_Text_1")
	assert.Nil(t, d.Tile("intro_Text_1"))
	assert.Equal(t, [][]string{{"#intro"}, {"_"}, {"#end"}, {"_"}}, rowShape(d))

	// real content next to a placeholder row replaces it
	res := d.AddTile(tiles.TextType, AddTileOptions{InsertRowInfo: ptr(types.InsertAt(1))})
	require.NotNil(t, res)
	assert.Equal(t, [][]string{{"#intro"}, {res.TileID}, {"#end"}, {"_"}}, rowShape(d))
	assertExclusiveRows(t, d)

	placeholders := 0
	for _, tile := range d.tiles {
		if tile.IsPlaceholder() {
			placeholders++
		}
	}
	assert.Equal(t, 1, placeholders, "discarded placeholder tiles leave the map")
}

func ptr[T any](v T) *T { return &v }

func TestDeleteTileReleasesLinksAndEmbeddedTiles(t *testing.T) {
	d := newDoc(t)
	table := addTile(t, d, tiles.TableType, AddTileOptions{})
	graph := addTile(t, d, tiles.GeometryType, AddTileOptions{})
	ds := d.TileSharedModels(table)[0]
	d.AddTileSharedModel(graph, ds, false)
	q := addTile(t, d, tiles.QuestionType, AddTileOptions{})
	inner := addTile(t, d, tiles.TextType, AddTileOptions{RowListID: q})
	note := d.AddAnnotation([]string{table, graph}, nil)
	require.NotNil(t, note)

	d.DeleteTile(table)
	entry, ok := d.SharedModelEntry(ds.ID)
	require.True(t, ok, "entries are never removed implicitly")
	assert.Equal(t, []string{graph}, entry.Tiles)
	assert.Empty(t, entry.Provider)
	assert.Empty(t, d.Annotations())

	d.DeleteTile(q)
	assert.Nil(t, d.Tile(q))
	assert.Nil(t, d.Tile(inner))
	assert.Equal(t, [][]string{{graph}}, rowShape(d))
}

func TestMoveTiles(t *testing.T) {
	setup := func(t *testing.T) (*Content, []string) {
		d := newDoc(t)
		var ids []string
		for range 4 {
			ids = append(ids, addTile(t, d, tiles.TextType, AddTileOptions{}))
		}
		// rows: [a b] [c] [d]
		require.True(t, d.MoveTile(ids[1], types.DropInto(d.rows.FindRowContainingTile(ids[0]), types.DropRight), 0))
		return d, ids
	}
	items := func(ids ...string) []types.DragTileItem {
		out := make([]types.DragTileItem, len(ids))
		for i, id := range ids {
			out[i] = types.DragTileItem{TileID: id}
		}
		return out
	}

	t.Run("whole row moves", func(t *testing.T) {
		d, ids := setup(t)
		d.MoveTiles(items(ids[1], ids[0]), types.InsertAt(3))
		assert.Equal(t, [][]string{{ids[2]}, {ids[3]}, {ids[0], ids[1]}}, rowShape(d))
	})

	t.Run("whole row merges into target", func(t *testing.T) {
		d, ids := setup(t)
		d.MoveTiles(items(ids[0], ids[1]), types.DropInto(d.rows.FindRowContainingTile(ids[3]), types.DropRight))
		assert.Equal(t, [][]string{{ids[2]}, {ids[3], ids[0], ids[1]}}, rowShape(d))
	})

	t.Run("partial row moves tile by tile", func(t *testing.T) {
		d, ids := setup(t)
		// rows: [a b c] [d]
		require.True(t, d.MoveTile(ids[2], types.DropInto(d.rows.FindRowContainingTile(ids[0]), types.DropRight), 0))
		d.MoveTiles(items(ids[2], ids[1]), types.InsertAt(0))
		assert.Equal(t, [][]string{{ids[1], ids[2]}, {ids[0]}, {ids[3]}}, rowShape(d))
		assertExclusiveRows(t, d)
	})

	t.Run("missing ids are skipped", func(t *testing.T) {
		d, ids := setup(t)
		d.MoveTiles(items("gone", ids[3]), types.InsertAt(0))
		assert.Equal(t, [][]string{{ids[3]}, {ids[0], ids[1]}, {ids[2]}}, rowShape(d))
	})
}

func TestComputeTilePositionsDocumentOrder(t *testing.T) {
	d := newDoc(t)
	a := addTile(t, d, tiles.TextType, AddTileOptions{})
	b := addTile(t, d, tiles.TextType, AddTileOptions{})
	q := addTile(t, d, tiles.QuestionType, AddTileOptions{})
	inner := addTile(t, d, tiles.TextType, AddTileOptions{RowListID: q})
	require.True(t, d.MoveTile(b, types.DropInto(d.rows.FindRowContainingTile(a), types.DropLeft), 0))

	got := d.ComputeTilePositions([]string{inner, a, "missing", b, q})
	want := []types.TilePosition{
		{TileID: b, RowIndex: 0, TileIndex: 0},
		{TileID: a, RowIndex: 0, TileIndex: 1},
		{TileID: q, RowIndex: 1, TileIndex: 0},
		{TileID: inner, RowList: q, RowIndex: 0, TileIndex: 0},
	}
	assert.Equal(t, want, got)
}

func TestSetRowHeightAndTitle(t *testing.T) {
	d := newDoc(t)
	res := d.AddTile(tiles.GeometryType, AddTileOptions{Title: "Graph 1"})
	require.NotNil(t, res)

	d.WithoutUndo(func() { assert.True(t, d.SetRowHeight(res.RowID, 400)) })
	assert.Equal(t, float64(400), d.rows.Row(res.RowID).Height)
	assert.False(t, d.SetRowHeight("missing", 10))

	assert.True(t, d.SetTileTitle(res.TileID, "Heights"))
	assert.Equal(t, "Heights", d.Tile(res.TileID).Title)
	require.NoError(t, d.Undo())
	assert.Equal(t, "Graph 1", d.Tile(res.TileID).Title)
	assert.Equal(t, float64(400), d.rows.Row(res.RowID).Height, "excluded resize survives undo")
}
