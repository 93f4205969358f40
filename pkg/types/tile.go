package types

import (
	"encoding/json"
	"errors"
)

// PlaceholderType is the content type of the structural stand-in tile kept
// below a section header that has no real content.
const PlaceholderType = "Placeholder"

// Tile errors.
var (
	ErrTileNotFound        = errors.New("tile not found")
	ErrUnknownContentType  = errors.New("unknown content type")
	ErrInvalidSnapshot     = errors.New("invalid snapshot")
	ErrContentTypeMissing  = errors.New("content snapshot has no type")
	ErrNestedContainer     = errors.New("container tiles cannot be nested")
	ErrSharedModelNotFound = errors.New("shared model not found")
)

// Tile wraps one unit of typed content with identity and presentation
// attributes. Tiles live in the document tile map; rows only reference them
// by id.
type Tile struct {
	ID            string
	Title         string
	Display       string // visibility restriction, e.g. "instructor"; empty means everyone
	FixedPosition bool   // cannot be moved or paired with siblings
	Content       TileContent
}

// Type returns the content type, or the empty string for a tile without
// content.
func (t *Tile) Type() string {
	if t == nil || t.Content == nil {
		return ""
	}
	return t.Content.Type()
}

// IsPlaceholder reports whether the tile is a placeholder stand-in.
func (t *Tile) IsPlaceholder() bool {
	return t.Type() == PlaceholderType
}

// TileSnapshot is the serialized form of a tile. It is the payload carried by
// transfer items and persisted snapshots.
type TileSnapshot struct {
	ID            string          `json:"id,omitempty"`
	Title         string          `json:"title,omitempty"`
	Display       string          `json:"display,omitempty"`
	FixedPosition bool            `json:"fixedPosition,omitempty"`
	Content       json.RawMessage `json:"content"`
}

// ContentType reads the "type" field of the snapshot content.
func (s TileSnapshot) ContentType() (string, error) {
	return ContentTypeOf(s.Content)
}

// ContentTypeOf extracts the "type" field from a serialized content payload.
func ContentTypeOf(raw json.RawMessage) (string, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", errors.Join(ErrInvalidSnapshot, err)
	}
	if head.Type == "" {
		return "", ErrContentTypeMissing
	}
	return head.Type, nil
}

// ExportOptions controls ExportJSON output.
type ExportOptions struct {
	IncludeTileIDs bool
	// Rows is set by the document when exporting container content, so a
	// container can serialize its embedded rows in document export format.
	Rows func(rl *RowList) ([]json.RawMessage, error)
}

// TileContent is the contract every tile payload satisfies. The document
// only relies on these methods and on the capability flags recorded in the
// content's ContentInfo.
type TileContent interface {
	Type() string
	// Snapshot returns the complete serialized content including "type".
	Snapshot() (json.RawMessage, error)
	// ExportJSON returns the authored export form of the content.
	ExportJSON(opts ExportOptions) (json.RawMessage, error)
}

// TileEnv is handed to lifecycle hooks. Content never keeps a pointer to the
// document; it reaches shared models through Models using its own TileID.
type TileEnv struct {
	TileID string
	Models SharedModelManager
}

// PostCreator is implemented by content that wires itself up after the tile
// has been inserted (for example, a table creating the dataset it provides).
type PostCreator interface {
	DoPostCreate(env TileEnv)
}

// RemovalListener is implemented by content that releases external state,
// typically shared-model links, before its tile is deleted.
type RemovalListener interface {
	WillRemoveFromDocument(env TileEnv)
}

// SharedModelListener is notified after a shared model used by the tile is
// attached, detached or changed.
type SharedModelListener interface {
	UpdateAfterSharedModelChanges(model *SharedModel)
}

// IDRemapper rewrites identifiers embedded in the content payload. It is
// called on a freshly parsed copy during transfer with the complete
// old-to-new id map of the copy.
type IDRemapper interface {
	RemapIDs(idMap map[string]string)
}

// Container is implemented by content that embeds its own rows.
type Container interface {
	RowList() *RowList
}

// DefaultContentOptions are passed to a content factory when a tile is
// created by type rather than from a snapshot.
type DefaultContentOptions struct {
	Title string
	URL   string
}

// ContentInfo is the registration record of one content type: capability
// flags plus the constructors the document dispatches through.
type ContentInfo struct {
	Type            string
	TitleBase       string  // base used for generated titles, e.g. "Table"
	DefaultHeight   float64 // initial row height for new tiles; 0 means unset
	IsContainer     bool
	IsDataProvider  bool
	IsDataConsumer  bool
	IsUserResizable bool

	DefaultContent func(opts DefaultContentOptions) TileContent
	FromSnapshot   func(raw json.RawMessage) (TileContent, error)
}

// SharedModelInfo is the registration record of one shared-model type.
type SharedModelInfo struct {
	Type    string
	HasName bool
	// Duplicate marks models that are copied with new ids when their tiles
	// are copied. Other models are relinked to the existing instance.
	Duplicate bool
}

// ContentRegistry resolves type names to registration records.
type ContentRegistry interface {
	ContentInfo(typ string) (*ContentInfo, bool)
	SharedModelInfo(typ string) (*SharedModelInfo, bool)
}
