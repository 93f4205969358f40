package document

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// change is one recorded mutation with its inverse.
type change struct {
	undo func()
	redo func()
}

// Transaction groups the changes made by one top-level operation. Nested
// operations join the open transaction rather than starting their own.
type Transaction struct {
	Name string
	// ExcludeFromUndo keeps the transaction out of the undo stack while its
	// changes still take effect.
	ExcludeFromUndo bool

	changes []change
	failed  bool
}

// History is the undo/redo log of a document.
type History struct {
	undo  []*Transaction
	redo  []*Transaction
	open  *Transaction
	depth int
	// muted is positive while changes must not be recorded: inside
	// WithoutUndo steps and while undo/redo replays changes.
	muted int
	limit int
}

func newHistory() *History {
	return &History{limit: 100}
}

func (h *History) record(c change) {
	if h.open == nil || h.muted > 0 {
		return
	}
	h.open.changes = append(h.open.changes, c)
}

func (h *History) revert(tx *Transaction) {
	h.muted++
	defer func() { h.muted-- }()
	for i := len(tx.changes) - 1; i >= 0; i-- {
		tx.changes[i].undo()
	}
}

func (h *History) replay(tx *Transaction) {
	h.muted++
	defer func() { h.muted-- }()
	for _, c := range tx.changes {
		c.redo()
	}
}

func (h *History) commit(tx *Transaction) {
	if tx.ExcludeFromUndo || len(tx.changes) == 0 {
		return
	}
	h.undo = append(h.undo, tx)
	if h.limit > 0 && len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

// begin opens a transaction, or joins the open one, and returns the function
// that closes it. Use as `defer d.begin("name")()`. If the operation panics,
// the outermost close reverts everything recorded so far and re-panics.
func (d *Content) begin(name string) func() {
	h := d.history
	if h.depth == 0 {
		h.open = &Transaction{Name: name, ExcludeFromUndo: h.muted > 0}
	}
	h.depth++
	return func() {
		if r := recover(); r != nil {
			d.end(true)
			panic(r)
		}
		d.end(false)
	}
}

func (d *Content) end(panicked bool) {
	h := d.history
	h.depth--
	if h.depth > 0 {
		return
	}
	tx := h.open
	h.open = nil
	if panicked || tx.failed {
		d.log.Warn("reverting transaction", zap.String("transaction", tx.Name), zap.Bool("panicked", panicked))
		h.revert(tx)
		return
	}
	h.commit(tx)
}

// Transact runs fn as one undoable step. Operations called by fn join the
// same transaction. If fn returns an error the whole transaction is reverted
// and the error returned.
func (d *Content) Transact(name string, fn func() error) error {
	defer d.begin(name)()
	if err := fn(); err != nil {
		d.history.open.failed = true
		return err
	}
	return nil
}

// WithoutUndo runs fn so that its changes take effect immediately but are
// not recorded. Inside a transaction only fn's sub-step is excluded; at top
// level no history entry is produced.
func (d *Content) WithoutUndo(fn func()) {
	h := d.history
	h.muted++
	defer func() { h.muted-- }()
	fn()
}

// CanUndo reports whether Undo would do anything.
func (d *Content) CanUndo() bool { return len(d.history.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (d *Content) CanRedo() bool { return len(d.history.redo) > 0 }

// UndoNames returns the names of undoable transactions, oldest first.
func (d *Content) UndoNames() []string {
	names := make([]string, len(d.history.undo))
	for i, tx := range d.history.undo {
		names[i] = tx.Name
	}
	return names
}

// Undo reverts the most recent transaction.
func (d *Content) Undo() error {
	h := d.history
	if len(h.undo) == 0 {
		return types.ErrNothingToUndo
	}
	tx := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.revert(tx)
	h.redo = append(h.redo, tx)
	d.log.Debug("undo", zap.String("transaction", tx.Name))
	return nil
}

// Redo reapplies the most recently undone transaction.
func (d *Content) Redo() error {
	h := d.history
	if len(h.redo) == 0 {
		return types.ErrNothingToRedo
	}
	tx := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.replay(tx)
	h.undo = append(h.undo, tx)
	d.log.Debug("redo", zap.String("transaction", tx.Name))
	return nil
}
