// Tests for JSONL persistence helpers.
package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	records := []json.RawMessage{
		json.RawMessage(`{"a":1}`),
		json.RawMessage(`{"b":[1,2]}`),
	}
	require.NoError(t, writeJSONL(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":[1,2]}\n", string(data))

	got, skipped, err := readJSONL(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, records, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be renamed away")
}

func TestReadJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	content := strings.Join([]string{`{"ok":1}`, ``, `{broken`, `not json`, `{"ok":2}`}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, skipped, err := readJSONL(path)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"ok":2}`, string(got[1]))
}

func TestReadJSONLLongLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.jsonl")
	long := `{"text":"` + strings.Repeat("x", 1<<20) + `"}`
	require.NoError(t, writeJSONL(path, []json.RawMessage{json.RawMessage(long)}))

	got, _, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0], len(long))
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, _, err := readJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnsureJSONLKeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), documentsJSONL)
	require.NoError(t, ensureJSONL(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	require.NoError(t, os.WriteFile(path, []byte(`{"x":1}`+"\n"), 0o644))
	require.NoError(t, ensureJSONL(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`+"\n", string(data))
}
