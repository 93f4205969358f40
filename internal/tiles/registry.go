// Package tiles is the content-type catalog: a registration table mapping
// type names to capability flags and constructors, plus the built-in tile
// and shared-model types.
package tiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// Registry errors.
var (
	ErrDuplicateType = errors.New("type already registered")
	ErrIncomplete    = errors.New("content info needs a type and both constructors")
)

// Registry maps content and shared-model type names to their registration
// records. It is safe for concurrent reads once populated.
type Registry struct {
	mu       sync.RWMutex
	contents map[string]*types.ContentInfo
	models   map[string]*types.SharedModelInfo
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		contents: make(map[string]*types.ContentInfo),
		models:   make(map[string]*types.SharedModelInfo),
	}
}

// NewDefaultRegistry returns a registry holding every built-in type.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, info := range []types.ContentInfo{
		textInfo(), tableInfo(), geometryInfo(), placeholderInfo(), questionInfo(),
	} {
		r.mustRegister(info)
	}
	for _, info := range []types.SharedModelInfo{dataSetInfo(), variablesInfo()} {
		if err := r.RegisterSharedModel(info); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a content type.
func (r *Registry) Register(info types.ContentInfo) error {
	if info.Type == "" || info.DefaultContent == nil || info.FromSnapshot == nil {
		return fmt.Errorf("registering %q: %w", info.Type, ErrIncomplete)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contents[info.Type]; ok {
		return fmt.Errorf("registering %q: %w", info.Type, ErrDuplicateType)
	}
	r.contents[info.Type] = &info
	return nil
}

func (r *Registry) mustRegister(info types.ContentInfo) {
	if err := r.Register(info); err != nil {
		panic(err)
	}
}

// RegisterSharedModel adds a shared-model type.
func (r *Registry) RegisterSharedModel(info types.SharedModelInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[info.Type]; ok {
		return fmt.Errorf("registering shared model %q: %w", info.Type, ErrDuplicateType)
	}
	r.models[info.Type] = &info
	return nil
}

// ContentInfo implements types.ContentRegistry.
func (r *Registry) ContentInfo(typ string) (*types.ContentInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.contents[typ]
	return info, ok
}

// SharedModelInfo implements types.ContentRegistry.
func (r *Registry) SharedModelInfo(typ string) (*types.SharedModelInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.models[typ]
	return info, ok
}

// MustContentInfo returns the record for typ and panics when the type was
// never registered; that is a misconfigured host, not a data problem.
func MustContentInfo(reg types.ContentRegistry, typ string) *types.ContentInfo {
	info, ok := reg.ContentInfo(typ)
	if !ok {
		panic(fmt.Sprintf("tiles: no content type registered as %q", typ))
	}
	return info
}

// MustSharedModelInfo is MustContentInfo for shared-model types.
func MustSharedModelInfo(reg types.ContentRegistry, typ string) *types.SharedModelInfo {
	info, ok := reg.SharedModelInfo(typ)
	if !ok {
		panic(fmt.Sprintf("tiles: no shared model type registered as %q", typ))
	}
	return info
}

// Types returns the registered content type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.contents))
	for name := range r.contents {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ContentFromSnapshot parses a serialized content payload using the factory
// registered for its "type". Unknown types are reported as
// types.ErrUnknownContentType.
func ContentFromSnapshot(reg types.ContentRegistry, raw json.RawMessage) (types.TileContent, error) {
	typ, err := types.ContentTypeOf(raw)
	if err != nil {
		return nil, err
	}
	info, ok := reg.ContentInfo(typ)
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownContentType, typ)
	}
	content, err := info.FromSnapshot(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s content: %w", typ, err)
	}
	return content, nil
}
