package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listOf(ids ...string) *RowList {
	rl := NewRowList()
	for _, id := range ids {
		rl.InsertRow(&Row{ID: id}, -1)
	}
	return rl
}

func TestRowListInsertRow(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		want    []string
		wantIdx int
	}{
		{"front", 0, []string{"x", "a", "b"}, 0},
		{"middle", 1, []string{"a", "x", "b"}, 1},
		{"omitted appends", -1, []string{"a", "b", "x"}, 2},
		{"out of bounds appends", 9, []string{"a", "b", "x"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := listOf("a", "b")
			got := rl.InsertRow(&Row{ID: "x"}, tt.index)
			assert.Equal(t, tt.wantIdx, got)
			assert.Equal(t, tt.want, rl.RowIDs())
			assert.Equal(t, 3, rl.RowCount())
		})
	}
}

func TestRowListDeleteRowReturnsDetachedRow(t *testing.T) {
	rl := listOf("a", "b", "c")
	rl.Row("b").Tiles = []TileLayout{{TileID: "t1"}}

	row := rl.DeleteRow("b")
	require.NotNil(t, row)
	assert.Equal(t, []string{"t1"}, row.TileIDs(), "detached row keeps its tiles")
	assert.Equal(t, []string{"a", "c"}, rl.RowIDs())
	assert.Nil(t, rl.Row("b"))
	assert.Nil(t, rl.DeleteRow("b"))

	rl.InsertRow(row, 0)
	assert.Equal(t, []string{"b", "a", "c"}, rl.RowIDs())
}

func TestRowListLookups(t *testing.T) {
	rl := listOf("a", "b")
	rl.Row("b").Tiles = []TileLayout{{TileID: "t1"}, {TileID: "t2"}}

	assert.Equal(t, "b", rl.RowByIndex(1).ID)
	assert.Nil(t, rl.RowByIndex(2))
	assert.Nil(t, rl.RowByIndex(-1))
	assert.Equal(t, 1, rl.RowIndex("b"))
	assert.Equal(t, -1, rl.RowIndex("zz"))
	assert.Equal(t, "b", rl.FindRowContainingTile("t2"))
	assert.Equal(t, "", rl.FindRowContainingTile("t3"))
	assert.Equal(t, []string{"t1", "t2"}, rl.TileIDs())
}

func TestRowListIndexOfLastVisibleRow(t *testing.T) {
	tests := []struct {
		name    string
		rows    []string
		visible []string
		want    int
	}{
		{"last visible present", []string{"a", "b", "c"}, []string{"a", "b"}, 1},
		{"skips vanished rows", []string{"a", "b", "c"}, []string{"a", "gone"}, 0},
		{"no match falls back to last row", []string{"a", "b", "c"}, []string{"x"}, 2},
		{"nothing visible falls back to last row", []string{"a", "b"}, nil, 1},
		{"empty list", nil, []string{"a"}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := listOf(tt.rows...)
			assert.Equal(t, tt.want, rl.IndexOfLastVisibleRow(tt.visible))
		})
	}
}

func TestRowListShallowCopyAndReplace(t *testing.T) {
	rl := listOf("a", "b")
	saved := rl.ShallowCopy()
	rl.InsertRow(&Row{ID: "c"}, 0)
	rl.DeleteRow("a")

	rl.ReplaceWith(saved)
	assert.Equal(t, []string{"a", "b"}, rl.RowIDs())
	assert.Same(t, saved.Row("a"), rl.Row("a"))
}

func TestRowListJSON(t *testing.T) {
	rl := listOf("a", "b")
	rl.Row("a").IsSectionHeader = true
	rl.Row("a").SectionID = "intro"
	rl.Row("b").Tiles = []TileLayout{{TileID: "t1"}}

	data, err := json.Marshal(rl)
	require.NoError(t, err)

	got := NewRowList()
	require.NoError(t, json.Unmarshal(data, got))
	assert.Equal(t, []string{"a", "b"}, got.RowIDs())
	assert.Equal(t, "intro", got.Row("a").SectionID)
	assert.Equal(t, []string{"t1"}, got.Row("b").TileIDs())

	t.Run("drops dangling order entries", func(t *testing.T) {
		var rl RowList
		err := json.Unmarshal([]byte(`{"rowMap":{"a":{}},"rowOrder":["a","missing"]}`), &rl)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, rl.RowIDs())
		assert.Equal(t, "a", rl.Row("a").ID)
	})
}
