// Package document implements the document content model: the row/tile
// tree, the shared-model registry, the drag/copy pipeline, import/export and
// the transaction history. Content is the single mutation authority; every
// structural change goes through its methods.
package document

import (
	"encoding/json"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/internal/tiles"
	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// Content is a document: a root RowList, the flat tile map every row refers
// into, the shared-model registry and the annotations anchored to tiles.
// Content is not safe for concurrent use.
type Content struct {
	reg types.ContentRegistry
	log *zap.Logger
	cfg types.Config

	// contentID changes on every load; transfers use it to spot self-drops.
	contentID string

	rows        *types.RowList
	tiles       map[string]*types.Tile
	models      map[string]*types.SharedModelEntry
	modelOrder  []string
	annotations map[string]*types.Annotation
	annoOrder   []string
	visibleRows []string

	history *History
}

// Option configures a Content.
type Option func(*Content)

// WithLogger sets the logger used for refused operations and diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(d *Content) {
		if l != nil {
			d.log = l
		}
	}
}

// WithConfig overrides the default document settings.
func WithConfig(cfg types.Config) Option {
	return func(d *Content) { d.cfg = cfg }
}

// WithHistoryLimit caps the number of undoable transactions kept.
func WithHistoryLimit(n int) Option {
	return func(d *Content) { d.history.limit = n }
}

// New returns an empty document using reg to resolve content types.
func New(reg types.ContentRegistry, opts ...Option) *Content {
	d := &Content{
		reg:         reg,
		log:         zap.NewNop(),
		cfg:         types.DefaultConfig(),
		contentID:   types.NewID(),
		rows:        types.NewRowList(),
		tiles:       make(map[string]*types.Tile),
		models:      make(map[string]*types.SharedModelEntry),
		annotations: make(map[string]*types.Annotation),
		history:     newHistory(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ContentID returns the ephemeral id of this loaded instance.
func (d *Content) ContentID() string { return d.contentID }

// Registry returns the content registry the document dispatches through.
func (d *Content) Registry() types.ContentRegistry { return d.reg }

// Tile returns the tile with the given id, or nil.
func (d *Content) Tile(id string) *types.Tile {
	return d.tiles[id]
}

// TileCount returns the number of tiles in the tile map, embedded tiles
// included.
func (d *Content) TileCount() int { return len(d.tiles) }

// RowCount returns the number of rows of the document root.
func (d *Content) RowCount() int { return d.rows.RowCount() }

// RowIDs returns the root row order.
func (d *Content) RowIDs() []string { return d.rows.RowIDs() }

// Rows returns copies of the root rows in order.
func (d *Content) Rows() []*types.Row {
	return cloneRows(d.rows.Rows())
}

// RowByIndex returns a copy of the root row at index, or nil.
func (d *Content) RowByIndex(index int) *types.Row {
	if row := d.rows.RowByIndex(index); row != nil {
		return row.Clone()
	}
	return nil
}

// EmbeddedRows returns copies of the rows of a container tile, or nil when
// containerID is not a container.
func (d *Content) EmbeddedRows(containerID string) []*types.Row {
	rl := d.rowList(containerID)
	if rl == nil || containerID == "" {
		return nil
	}
	return cloneRows(rl.Rows())
}

func cloneRows(rows []*types.Row) []*types.Row {
	out := make([]*types.Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// SetVisibleRows records which root rows are currently on screen. It is
// view state and is not part of the undo history.
func (d *Content) SetVisibleRows(rowIDs []string) {
	d.visibleRows = slices.Clone(rowIDs)
}

// rowList resolves a RowList id: "" is the document root, otherwise the id of
// a container tile. Returns nil when id names nothing with rows.
func (d *Content) rowList(id string) *types.RowList {
	if id == "" {
		return d.rows
	}
	tile := d.tiles[id]
	if tile == nil {
		return nil
	}
	if c, ok := tile.Content.(types.Container); ok {
		return c.RowList()
	}
	return nil
}

// containerIDs returns the ids of container tiles in root document order.
func (d *Content) containerIDs() []string {
	var ids []string
	for _, id := range d.rows.TileIDs() {
		if d.isContainerTile(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// location says where a tile sits.
type location struct {
	listID string // owning container id, "" for root
	rl     *types.RowList
	row    *types.Row
}

// locate finds the row holding tileID at root or inside a container.
func (d *Content) locate(tileID string) (location, bool) {
	if rowID := d.rows.FindRowContainingTile(tileID); rowID != "" {
		return location{rl: d.rows, row: d.rows.Row(rowID)}, true
	}
	for _, cid := range d.containerIDs() {
		rl := d.rowList(cid)
		if rowID := rl.FindRowContainingTile(tileID); rowID != "" {
			return location{listID: cid, rl: rl, row: rl.Row(rowID)}, true
		}
	}
	return location{}, false
}

// TilesInDocumentOrder lists every placed tile: root rows top to bottom,
// tiles left to right, with a container's embedded tiles directly after it.
func (d *Content) TilesInDocumentOrder() []string {
	var ids []string
	for _, id := range d.rows.TileIDs() {
		ids = append(ids, id)
		if rl := d.rowList(id); rl != nil {
			ids = append(ids, rl.TileIDs()...)
		}
	}
	return ids
}

// TileIDsByType returns the ids of tiles of typ in document order.
func (d *Content) TileIDsByType(typ string) []string {
	var ids []string
	for _, id := range d.TilesInDocumentOrder() {
		if d.tiles[id].Type() == typ {
			ids = append(ids, id)
		}
	}
	return ids
}

// SectionIDForTile returns the section of the nearest header row above the
// tile's root row, or "".
func (d *Content) SectionIDForTile(tileID string) string {
	loc, ok := d.locate(tileID)
	if !ok {
		return ""
	}
	rowID := loc.row.ID
	if loc.listID != "" {
		rowID = d.rows.FindRowContainingTile(loc.listID)
	}
	for i := d.rows.RowIndex(rowID); i >= 0; i-- {
		if row := d.rows.RowByIndex(i); row.IsSectionHeader {
			return row.SectionID
		}
	}
	return ""
}

// isUserResizable reports the capability flag of the tile's content type.
func (d *Content) isUserResizable(tileID string) bool {
	tile := d.tiles[tileID]
	if tile == nil || tile.Content == nil {
		return false
	}
	info, ok := d.reg.ContentInfo(tile.Type())
	return ok && info.IsUserResizable
}

func (d *Content) isContainerTile(tileID string) bool {
	tile := d.tiles[tileID]
	if tile == nil {
		return false
	}
	_, ok := tile.Content.(types.Container)
	return ok
}

// env is the hook environment for tileID.
func (d *Content) env(tileID string) types.TileEnv {
	return types.TileEnv{TileID: tileID, Models: d}
}

// contentInfo returns the registration of typ; an unregistered type is a
// programming error and panics.
func (d *Content) contentInfo(typ string) *types.ContentInfo {
	return tiles.MustContentInfo(d.reg, typ)
}

func (d *Content) contentFromSnapshot(raw json.RawMessage) (types.TileContent, error) {
	return tiles.ContentFromSnapshot(d.reg, raw)
}
