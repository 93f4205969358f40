package tiles

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

func TestDefaultRegistryCapabilities(t *testing.T) {
	reg := NewDefaultRegistry()

	tests := []struct {
		typ       string
		container bool
		provider  bool
		consumer  bool
		resizable bool
	}{
		{TextType, false, false, false, false},
		{TableType, false, true, false, false},
		{GeometryType, false, false, true, true},
		{types.PlaceholderType, false, false, false, false},
		{QuestionType, true, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			info, ok := reg.ContentInfo(tt.typ)
			require.True(t, ok)
			assert.Equal(t, tt.container, info.IsContainer)
			assert.Equal(t, tt.provider, info.IsDataProvider)
			assert.Equal(t, tt.consumer, info.IsDataConsumer)
			assert.Equal(t, tt.resizable, info.IsUserResizable)
			assert.Equal(t, tt.typ, info.DefaultContent(types.DefaultContentOptions{}).Type())
		})
	}
	assert.Equal(t, []string{GeometryType, types.PlaceholderType, QuestionType, TableType, TextType}, reg.Types())
}

func TestRegistryRejectsDuplicatesAndIncompleteInfo(t *testing.T) {
	reg := NewDefaultRegistry()

	err := reg.Register(textInfo())
	assert.ErrorIs(t, err, ErrDuplicateType)

	err = reg.Register(types.ContentInfo{Type: "Bare"})
	assert.ErrorIs(t, err, ErrIncomplete)

	err = reg.RegisterSharedModel(dataSetInfo())
	assert.ErrorIs(t, err, ErrDuplicateType)
}

func TestMustLookupsPanicOnUnknownTypes(t *testing.T) {
	reg := NewRegistry()
	assert.Panics(t, func() { MustContentInfo(reg, "Nope") })
	assert.Panics(t, func() { MustSharedModelInfo(reg, "Nope") })

	full := NewDefaultRegistry()
	assert.NotPanics(t, func() { MustSharedModelInfo(full, SharedDataSetType) })
}

func TestContentFromSnapshot(t *testing.T) {
	reg := NewDefaultRegistry()

	tests := []struct {
		name    string
		raw     string
		wantTyp string
		wantErr error
	}{
		{"text", `{"type":"Text","text":"hello"}`, TextType, nil},
		{"placeholder", `{"type":"Placeholder","sectionId":"intro"}`, types.PlaceholderType, nil},
		{"question without rows", `{"type":"Question"}`, QuestionType, nil},
		{"unknown type", `{"type":"Movie"}`, "", types.ErrUnknownContentType},
		{"missing type", `{"text":"x"}`, "", types.ErrContentTypeMissing},
		{"not json", `{`, "", types.ErrInvalidSnapshot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ContentFromSnapshot(reg, json.RawMessage(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTyp, c.Type())
		})
	}
}

func TestTextSnapshotRoundTrip(t *testing.T) {
	reg := NewDefaultRegistry()
	src := &TextContent{Text: "<p>hi</p>", Format: "html"}
	raw, err := src.Snapshot()
	require.NoError(t, err)

	got, err := ContentFromSnapshot(reg, raw)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}
