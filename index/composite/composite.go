// Package composite combines a randomized kd forest with a k-means tree and
// merges their answers.
package composite

import (
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
	"github.com/hupe1980/nnsearch/index/kdtree"
	"github.com/hupe1980/nnsearch/index/kmeans"
)

// Compile-time check to ensure Composite satisfies the index interface.
var _ index.Index[[]float64] = (*Composite[[]float64])(nil)

// Composite keeps both sub-indexes over the same points, so ids agree
// between them.
type Composite[E any] struct {
	forest *kdtree.Forest[E]
	tree   *kmeans.Tree[E]
}

// New builds both sub-indexes, concurrently when params.BuildWorkers is
// above one.
func New[E any](points []E, coords distance.Coordinates[E], params index.CompositeParams) (*Composite[E], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	c := &Composite[E]{}
	g := new(errgroup.Group)
	g.SetLimit(params.KDTree().BuildWorkers)
	g.Go(func() error {
		f, err := kdtree.NewForest(points, coords, params.KDTree())
		c.forest = f
		return err
	})
	g.Go(func() error {
		t, err := kmeans.New(points, coords, params.KMeans())
		c.tree = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

func (*Composite[E]) Algorithm() index.Algorithm { return index.AlgorithmComposite }

func (c *Composite[E]) AddPoints(points []E, rebuildThreshold float64) error {
	if err := c.forest.AddPoints(points, rebuildThreshold); err != nil {
		return err
	}
	return c.tree.AddPoints(points, rebuildThreshold)
}

func (c *Composite[E]) RemovePoint(id int) error {
	if err := c.forest.RemovePoint(id); err != nil {
		return err
	}
	return c.tree.RemovePoint(id)
}

func (c *Composite[E]) Point(id int) (*E, error) { return c.forest.Point(id) }

func (c *Composite[E]) Size() int { return c.forest.Size() }

// KNNSearch queries both sub-indexes and keeps the k best distinct answers.
func (c *Composite[E]) KNNSearch(query E, k int, params index.SearchParams) ([]index.Neighbor, error) {
	a, err := c.forest.KNNSearch(query, k, params)
	if err != nil {
		return nil, err
	}
	b, err := c.tree.KNNSearch(query, k, params)
	if err != nil {
		return nil, err
	}
	return index.MergeNeighbors(max(k, 0), a, b), nil
}

// RadiusSearch queries both sub-indexes and merges their answers. Results
// are always sorted.
func (c *Composite[E]) RadiusSearch(query E, radius float64, params index.SearchParams) ([]index.Neighbor, error) {
	params.Sorted = true
	a, err := c.forest.RadiusSearch(query, radius, params)
	if err != nil {
		return nil, err
	}
	b, err := c.tree.RadiusSearch(query, radius, params)
	if err != nil {
		return nil, err
	}

	limit := params.MaxNeighbors
	if limit <= 0 {
		limit = index.Unlimited
	}
	return index.MergeNeighbors(limit, a, b), nil
}
