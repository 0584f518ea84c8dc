// Package linear provides an exhaustive nearest neighbor index.
package linear

import (
	"math"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/internal/dataset"
	"github.com/hupe1980/nnsearch/internal/resultset"
)

// Compile-time check to ensure Linear satisfies the index interface.
var _ index.Index[[]float64] = (*Linear[[]float64])(nil)

// Linear compares the query against every point. Results are always exact
// and any distance adapter is accepted.
type Linear[E any] struct {
	dist   distance.Adapter[E]
	points *dataset.Points[E]
}

// New creates a linear index over points.
func New[E any](points []E, dist distance.Adapter[E]) *Linear[E] {
	return &Linear[E]{
		dist:   dist,
		points: dataset.New(points),
	}
}

func (*Linear[E]) Algorithm() index.Algorithm { return index.AlgorithmLinear }

// AddPoints appends points. There is no structure to rebuild.
func (l *Linear[E]) AddPoints(points []E, _ float64) error {
	l.points.Append(points)
	return nil
}

func (l *Linear[E]) RemovePoint(id int) error { return l.points.Remove(id) }

func (l *Linear[E]) Point(id int) (*E, error) { return l.points.Point(id) }

func (l *Linear[E]) Size() int { return l.points.Size() }

// KNNSearch scans all points. Search params do not apply.
func (l *Linear[E]) KNNSearch(query E, k int, _ index.SearchParams) ([]index.Neighbor, error) {
	if k <= 0 {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewKNN(min(k, l.points.Size()))
	l.scan(query, set)
	return set.Results(), nil
}

// RadiusSearch scans all points.
func (l *Linear[E]) RadiusSearch(query E, radius float64, params index.SearchParams) ([]index.Neighbor, error) {
	if radius < 0 || math.IsNaN(radius) {
		return []index.Neighbor{}, nil
	}
	set := resultset.NewRadius(radius, params.MaxNeighbors)
	l.scan(query, set)
	return set.Results(params.Sorted), nil
}

func (l *Linear[E]) scan(query E, set resultset.Set) {
	for id := range l.points.Len() {
		if l.points.IsRemoved(id) {
			continue
		}
		set.Add(id, l.dist.Distance(query, l.points.At(id)))
	}
}
