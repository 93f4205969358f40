// Shared helpers for tiledoc commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mesh-intelligence/tiledoc/internal/document"
	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

var (
	errDocumentExists   = errors.New("document already exists")
	errOperationRefused = errors.New("operation refused")
	errUsage            = errors.New("invalid arguments")
)

func (a *app) docOptions() []document.Option {
	return []document.Option{
		document.WithLogger(a.log.Named("document")),
		document.WithConfig(a.cfg),
	}
}

// findStored resolves ref as a document name, then as a document id.
func (a *app) findStored(ref string) (*types.StoredDocument, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	stored, err := store.FindDocument(ref)
	if errors.Is(err, types.ErrDocumentNotFound) {
		stored, err = store.LoadDocument(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", ref, err)
	}
	return stored, nil
}

// openDocument loads the document named (or identified by) ref.
func (a *app) openDocument(ref string) (*types.StoredDocument, *document.Content, error) {
	stored, err := a.findStored(ref)
	if err != nil {
		return nil, nil, err
	}
	doc, err := document.Load(a.reg, stored.Snapshot, a.docOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("load document %q: %w", stored.Name, err)
	}
	return stored, doc, nil
}

func (a *app) saveDocument(name string, doc *document.Content) (*types.StoredDocument, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	data, err := doc.SnapshotJSON()
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", name, err)
	}
	stored, err := store.SaveDocument(name, data)
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", name, err)
	}
	return stored, nil
}

func requireTiles(doc *document.Content, ids []string) error {
	for _, id := range ids {
		if doc.Tile(id) == nil {
			return fmt.Errorf("%w: %s", types.ErrTileNotFound, id)
		}
	}
	return nil
}

// selection returns ids, widened to every tile linked to them when linked
// is set.
func selection(doc *document.Content, ids []string, linked bool) []string {
	if linked {
		return doc.AllLinkedTileIDs(ids)
	}
	return ids
}

type placement struct {
	TileID string `json:"tile_id"`
	RowID  string `json:"row_id"`
}

func (a *app) printPlacements(w io.Writer, placed []types.NewRowTile) error {
	if a.jsonMode {
		out := make([]placement, 0, len(placed))
		for _, p := range placed {
			out = append(out, placement{TileID: p.TileID, RowID: p.RowID})
		}
		return writeJSON(w, out)
	}
	for _, p := range placed {
		fmt.Fprintf(w, "%s\t%s\n", p.TileID, p.RowID)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
