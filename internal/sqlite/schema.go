package sqlite

// Schema DDL. The database is a query index rebuilt from documents.jsonl on
// every Attach.
const (
	createDocuments = `CREATE TABLE documents (
    document_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    snapshot TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxDocumentsCreated = `CREATE INDEX idx_documents_created ON documents(created_at, document_id);`
)

var schemaDDL = []string{
	createDocuments,
}

var indexDDL = []string{
	idxDocumentsCreated,
}

// documentColumns is the column order shared by the loader and queries.
var documentColumns = []string{"document_id", "name", "snapshot", "created_at", "updated_at"}
