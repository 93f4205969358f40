package document

import (
	"encoding/json"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// AddAnnotation anchors a new annotation to tileIDs. Every anchor must be a
// tile of the document; otherwise nothing is added and nil is returned.
func (d *Content) AddAnnotation(tileIDs []string, data json.RawMessage) *types.Annotation {
	defer d.begin("addAnnotation")()
	if len(tileIDs) == 0 {
		return nil
	}
	for _, id := range tileIDs {
		if d.tiles[id] == nil {
			d.log.Warn("annotation anchor not found", zap.String("tileId", id))
			return nil
		}
	}
	a := &types.Annotation{ID: types.NewID(), TileIDs: slices.Clone(tileIDs), Data: slices.Clone(data)}
	d.setAnnotation(a.ID, a)
	return cloneAnnotation(a)
}

// RemoveAnnotation deletes the annotation id.
func (d *Content) RemoveAnnotation(id string) bool {
	defer d.begin("removeAnnotation")()
	if _, ok := d.annotations[id]; !ok {
		return false
	}
	d.setAnnotation(id, nil)
	return true
}

// Annotations returns copies of the annotations in creation order.
func (d *Content) Annotations() []*types.Annotation {
	out := make([]*types.Annotation, 0, len(d.annoOrder))
	for _, id := range d.annoOrder {
		out = append(out, cloneAnnotation(d.annotations[id]))
	}
	return out
}

func cloneAnnotation(a *types.Annotation) *types.Annotation {
	c := *a
	c.TileIDs = slices.Clone(a.TileIDs)
	c.Data = slices.Clone(a.Data)
	return &c
}
