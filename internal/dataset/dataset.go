// Package dataset holds the point list shared by the index implementations:
// references into caller-owned storage plus the set of removed ids.
package dataset

import (
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/internal/bitmap"
)

// Points is an append-only list of point references. Ids are positions in
// the list and stay valid after removal.
type Points[E any] struct {
	refs    []*E
	removed *bitmap.Set
}

// New references every element of points.
func New[E any](points []E) *Points[E] {
	p := &Points[E]{
		refs:    make([]*E, 0, len(points)),
		removed: bitmap.New(),
	}
	p.Append(points)
	return p
}

// Append references every element of points and returns the id of the first.
func (p *Points[E]) Append(points []E) int {
	first := len(p.refs)
	for i := range points {
		p.refs = append(p.refs, &points[i])
	}
	return first
}

// Len returns the number of ids, including removed ones.
func (p *Points[E]) Len() int { return len(p.refs) }

// Size returns the number of points that are not removed.
func (p *Points[E]) Size() int { return len(p.refs) - p.removed.Cardinality() }

// At returns the point with the given id. The id must be valid.
func (p *Points[E]) At(id int) E { return *p.refs[id] }

// Point returns a reference to the point with the given id.
func (p *Points[E]) Point(id int) (*E, error) {
	if id < 0 || id >= len(p.refs) {
		return nil, index.InvalidIDError(id, len(p.refs))
	}
	return p.refs[id], nil
}

// Remove marks id as removed. Removing an id twice is a no-op.
func (p *Points[E]) Remove(id int) error {
	if id < 0 || id >= len(p.refs) {
		return index.InvalidIDError(id, len(p.refs))
	}
	p.removed.Add(id)
	return nil
}

// IsRemoved reports whether id has been removed.
func (p *Points[E]) IsRemoved(id int) bool {
	return p.removed.Contains(id)
}

// Active returns the ids that are not removed, ascending.
func (p *Points[E]) Active() []int {
	ids := make([]int, 0, p.Size())
	for id := range p.refs {
		if !p.removed.Contains(id) {
			ids = append(ids, id)
		}
	}
	return ids
}
