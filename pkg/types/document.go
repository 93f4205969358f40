package types

import "errors"

// Document and history errors.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrNothingToRedo    = errors.New("nothing to redo")
	ErrRowListNotFound  = errors.New("row list not found")
)
