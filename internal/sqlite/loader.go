// This file loads documents.jsonl into the query index at startup.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// loadResult counts what loadDocuments did with each line.
type loadResult struct {
	loaded    int
	malformed int
	rejected  int
}

// loadDocuments reads path and inserts each record into the documents
// table inside a single transaction. Malformed lines and records missing
// required fields are skipped; unknown fields are ignored. A record whose
// id or name repeats an earlier one replaces it (INSERT OR REPLACE resolves
// both the key and the name constraint), so later lines win.
func loadDocuments(db *sql.DB, path string) (loadResult, error) {
	var res loadResult
	records, malformed, err := readJSONL(path)
	if err != nil {
		return res, err
	}
	res.malformed = malformed

	tx, err := db.Begin()
	if err != nil {
		return res, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(documentColumns)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT OR REPLACE INTO documents (%s) VALUES (%s)",
		strings.Join(documentColumns, ", "), placeholders,
	))
	if err != nil {
		return res, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var doc documentRecord
		if err := json.Unmarshal(rec, &doc); err != nil || !doc.valid() {
			res.rejected++
			continue
		}
		if _, err := stmt.Exec(doc.args()...); err != nil {
			res.rejected++
			continue
		}
		res.loaded++
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("committing load transaction: %w", err)
	}
	return res, nil
}

// documentRecord is the JSONL line format. Timestamps are RFC 3339 strings.
type documentRecord struct {
	DocumentID string          `json:"document_id"`
	Name       string          `json:"name"`
	Snapshot   json.RawMessage `json:"snapshot"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

func (r documentRecord) valid() bool {
	if r.DocumentID == "" || r.Name == "" || len(r.Snapshot) == 0 {
		return false
	}
	if _, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err != nil {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return err == nil
}

func (r documentRecord) args() []any {
	return []any{r.DocumentID, r.Name, string(r.Snapshot), r.CreatedAt, r.UpdatedAt}
}
