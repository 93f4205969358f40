package clipboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

func samplePackage() *types.TransferPackage {
	return &types.TransferPackage{
		SourceDocID: "doc-1",
		Tiles: []types.DragTileItem{
			{RowIndex: 0, TileIndex: 0, TileID: "t1", NewTileID: "n1", RowHeight: 160,
				TileContent: `{"content":{"type":"Table"}}`, TileType: "Table"},
			{RowIndex: 0, TileIndex: 0, TileID: "t2", NewTileID: "n2", TileContent: `{"content":{"type":"Text","text":"x"}}`,
				TileType: "Text", RowList: "q1", Embedded: true},
		},
		SharedModels: []types.DragSharedModelItem{
			{ModelID: "m1", ProviderID: "t1", TileIDs: []string{"t1"}, Content: `{"id":"m1","type":"SharedDataSet"}`},
		},
		Annotations: []types.Annotation{
			{ID: "a1", TileIDs: []string{"t1", "t2"}, Data: json.RawMessage(`{"kind":"arrow"}`)},
		},
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []Format{FormatCBOR, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(samplePackage(), format)
			require.NoError(t, err)

			detected, err := Detect(data)
			require.NoError(t, err)
			assert.Equal(t, format, detected)

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, samplePackage(), got)
		})
	}
}

func TestCBORIsCompact(t *testing.T) {
	asCBOR, err := Encode(samplePackage(), FormatCBOR)
	require.NoError(t, err)
	asJSON, err := Encode(samplePackage(), FormatJSON)
	require.NoError(t, err)
	assert.Less(t, len(asCBOR), len(asJSON))
	assert.Equal(t, cborPrefix, asCBOR[:3])
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrEmptyPayload},
		{"whitespace", []byte("  \n"), ErrEmptyPayload},
		{"plain text", []byte("hello"), ErrUnknownFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := Decode([]byte(`{"tiles": 5}`))
	assert.Error(t, err)
	_, err = Decode(append(append([]byte{}, cborPrefix...), 0xff))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = Encode(samplePackage(), "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.cbor")
	require.NoError(t, WriteFile(path, samplePackage(), FormatCBOR))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.SourceDocID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	_, err = ReadFile(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
