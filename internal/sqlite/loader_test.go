// Tests for loading documents.jsonl at attach time, including tolerance
// for unknown fields and unreadable lines.
package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeLines(t *testing.T, dir string, lines ...string) {
	t.Helper()
	path := filepath.Join(dir, documentsJSONL)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestLoadDocumentsJSONL(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantNames []string
		wantWarn  bool
	}{
		{
			name: "unknown fields are ignored",
			lines: []string{
				`{"document_id":"d1","name":"one","snapshot":{"rows":{}},"created_at":"2026-01-15T10:30:00Z","updated_at":"2026-01-15T10:30:00Z","owner":"someone"}`,
			},
			wantNames: []string{"one"},
		},
		{
			name: "malformed and incomplete records are skipped",
			lines: []string{
				`{"document_id":"d1","name":"one","snapshot":{},"created_at":"2026-01-15T10:30:00Z","updated_at":"2026-01-15T10:30:00Z"}`,
				`{"document_id":"d2","name":"two"`,
				`{"document_id":"d3","snapshot":{},"created_at":"2026-01-15T10:30:00Z","updated_at":"2026-01-15T10:30:00Z"}`,
				`{"document_id":"d4","name":"four","snapshot":{},"created_at":"yesterday","updated_at":"2026-01-15T10:30:00Z"}`,
			},
			wantNames: []string{"one"},
			wantWarn:  true,
		},
		{
			name: "later record with the same name wins",
			lines: []string{
				`{"document_id":"d1","name":"dup","snapshot":{"v":1},"created_at":"2026-01-15T10:30:00Z","updated_at":"2026-01-15T10:30:00Z"}`,
				`{"document_id":"d2","name":"dup","snapshot":{"v":2},"created_at":"2026-01-16T10:30:00Z","updated_at":"2026-01-16T10:30:00Z"}`,
			},
			wantNames: []string{"dup"},
		},
		{
			name: "listing follows creation time",
			lines: []string{
				`{"document_id":"d2","name":"later","snapshot":{},"created_at":"2026-02-01T00:00:00.000000000Z","updated_at":"2026-02-01T00:00:00.000000000Z"}`,
				`{"document_id":"d1","name":"earlier","snapshot":{},"created_at":"2026-01-01T00:00:00.000000000Z","updated_at":"2026-01-01T00:00:00.000000000Z"}`,
			},
			wantNames: []string{"earlier", "later"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeLines(t, dir, tt.lines...)
			core, logs := observer.New(zapcore.WarnLevel)
			b := attached(t, dir, WithLogger(zap.New(core)))

			docs, err := b.ListDocuments()
			require.NoError(t, err)
			var names []string
			for _, d := range docs {
				names = append(names, d.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			if tt.wantWarn {
				assert.Equal(t, 1, logs.FilterMessage("skipped unreadable document records").Len())
			} else {
				assert.Zero(t, logs.Len())
			}
		})
	}
}

func TestLoadDocumentsKeepsLatestSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeLines(t, dir,
		`{"document_id":"d1","name":"dup","snapshot":{"v":1},"created_at":"2026-01-15T10:30:00Z","updated_at":"2026-01-15T10:30:00Z"}`,
		`{"document_id":"d2","name":"dup","snapshot":{"v":2},"created_at":"2026-01-16T10:30:00Z","updated_at":"2026-01-16T10:30:00Z"}`,
	)
	b := attached(t, dir)

	doc, err := b.FindDocument("dup")
	require.NoError(t, err)
	assert.Equal(t, "d2", doc.DocumentID)
	assert.JSONEq(t, `{"v":2}`, string(doc.Snapshot))
}
