// This file implements document CRUD against the SQLite index with
// write-through persistence to documents.jsonl.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// timeLayout is fixed-width so that created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectDocuments = "SELECT document_id, name, snapshot, created_at, updated_at FROM documents"

func newDocumentID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating UUID v7: %w", err)
	}
	return id.String(), nil
}

// SaveDocument stores snapshot under name. A new name creates a document
// with a fresh UUID v7; an existing name keeps its id and creation time.
func (b *Backend) SaveDocument(name string, snapshot json.RawMessage) (*types.StoredDocument, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrInvalidName
	}
	if len(snapshot) == 0 {
		return nil, types.ErrSnapshotRequired
	}
	if !json.Valid(snapshot) {
		return nil, fmt.Errorf("%w: snapshot is not valid JSON", types.ErrInvalidSnapshot)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	now := time.Now().UTC()
	existing, err := b.findLocked("name", name)
	if err != nil && !errors.Is(err, types.ErrDocumentNotFound) {
		return nil, err
	}

	doc := &types.StoredDocument{Name: name, Snapshot: snapshot, UpdatedAt: now}
	if existing != nil {
		doc.DocumentID = existing.DocumentID
		doc.CreatedAt = existing.CreatedAt
		_, err = b.db.Exec(
			"UPDATE documents SET snapshot = ?, updated_at = ? WHERE document_id = ?",
			string(snapshot), now.Format(timeLayout), doc.DocumentID,
		)
	} else {
		if doc.DocumentID, err = newDocumentID(); err != nil {
			return nil, err
		}
		doc.CreatedAt = now
		_, err = b.db.Exec(
			"INSERT INTO documents (document_id, name, snapshot, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			doc.DocumentID, name, string(snapshot), now.Format(timeLayout), now.Format(timeLayout),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("persisting document %s: %w", name, err)
	}

	if err := b.persistLocked(); err != nil {
		return nil, fmt.Errorf("persisting %s: %w", documentsJSONL, err)
	}
	return doc, nil
}

// LoadDocument returns the document with the given id.
func (b *Backend) LoadDocument(id string) (*types.StoredDocument, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.findLocked("document_id", id)
}

// FindDocument returns the document with the given name.
func (b *Backend) FindDocument(name string) (*types.StoredDocument, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrInvalidName
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.findLocked("name", name)
}

// ListDocuments returns every document, oldest first.
func (b *Backend) ListDocuments() ([]*types.StoredDocument, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.listLocked()
}

// DeleteDocument removes the document with the given id.
func (b *Backend) DeleteDocument(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	res, err := b.db.Exec("DELETE FROM documents WHERE document_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrDocumentNotFound
	}
	if err := b.persistLocked(); err != nil {
		return fmt.Errorf("persisting %s: %w", documentsJSONL, err)
	}
	return nil
}

// findLocked looks a document up by one of its unique columns.
func (b *Backend) findLocked(column, value string) (*types.StoredDocument, error) {
	row := b.db.QueryRow(selectDocuments+" WHERE "+column+" = ?", value)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document %s: %w", value, err)
	}
	return doc, nil
}

func (b *Backend) listLocked() ([]*types.StoredDocument, error) {
	rows, err := b.db.Query(selectDocuments + " ORDER BY created_at, document_id")
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*types.StoredDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// persistLocked rewrites documents.jsonl from the index.
func (b *Backend) persistLocked() error {
	docs, err := b.listLocked()
	if err != nil {
		return err
	}
	records := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		line, err := json.Marshal(documentRecord{
			DocumentID: doc.DocumentID,
			Name:       doc.Name,
			Snapshot:   doc.Snapshot,
			CreatedAt:  doc.CreatedAt.Format(timeLayout),
			UpdatedAt:  doc.UpdatedAt.Format(timeLayout),
		})
		if err != nil {
			return fmt.Errorf("encoding document %s: %w", doc.DocumentID, err)
		}
		records = append(records, line)
	}
	return writeJSONL(b.jsonlPath(), records)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*types.StoredDocument, error) {
	var (
		doc                  types.StoredDocument
		snapshot             string
		createdAt, updatedAt string
	)
	if err := s.Scan(&doc.DocumentID, &doc.Name, &snapshot, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	doc.Snapshot = json.RawMessage(snapshot)
	var err error
	if doc.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if doc.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &doc, nil
}
