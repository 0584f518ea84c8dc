package nnsearch

import (
	"context"
	"math"
	"reflect"
	"time"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
)

// Neighbor is a stored element and its distance to a query.
type Neighbor[T any] struct {
	Element  T
	Distance float64
}

// Searcher answers nearest neighbor queries over elements of type T under a
// caller-supplied distance. It owns the elements and one index built over
// them; the index variant is selected by its index.Params.
//
// A Searcher is not safe for concurrent use. Callers must serialize access
// and must not call into the Searcher from a distance function.
type Searcher[T any] struct {
	dist   distance.Adapter[T]
	params index.Params
	search index.SearchParams
	equal  func(a, b T) bool
	clone  func(T) T

	store  *store[T]
	handle index.Index[T]

	logger  *Logger
	metrics MetricsCollector
}

// New creates an empty Searcher using dist. Without options it uses an
// exhaustive linear index and the default search parameters.
func New[T any](dist distance.Adapter[T], optFns ...Option) (*Searcher[T], error) {
	const op = "new"

	o := applyOptions(optFns)
	if err := CheckConfig(dist, o.params); err != nil {
		return nil, translateError(op, err)
	}
	if err := o.search.Validate(); err != nil {
		return nil, translateError(op, err)
	}

	equal := func(a, b T) bool { return reflect.DeepEqual(a, b) }
	if o.equal != nil {
		fn, ok := o.equal.(func(a, b T) bool)
		if !ok || fn == nil {
			return nil, translateError(op, ErrIncompatibleEqual)
		}
		equal = fn
	}

	var clone func(T) T
	if o.clone != nil {
		fn, ok := o.clone.(func(T) T)
		if !ok || fn == nil {
			return nil, translateError(op, ErrIncompatibleClone)
		}
		clone = fn
	}

	return &Searcher[T]{
		dist:    dist,
		params:  o.params,
		search:  o.search,
		equal:   equal,
		clone:   clone,
		store:   newStore[T](o.capacity),
		logger:  o.logger,
		metrics: o.metricsCollector,
	}, nil
}

// Size returns the number of stored elements.
func (s *Searcher[T]) Size() int {
	if s.handle == nil {
		return 0
	}
	return s.handle.Size()
}

// Capacity returns the number of elements the store holds before it has to
// grow, which forces a rebuild.
func (s *Searcher[T]) Capacity() int { return s.store.cap() }

// Dimension returns the number of coordinates per element, or zero when the
// distance adapter does not expose coordinates.
func (s *Searcher[T]) Dimension() int {
	if c, ok := s.dist.(distance.Coordinates[T]); ok {
		return c.Dimension()
	}
	return 0
}

// Distance returns the distance adapter.
func (s *Searcher[T]) Distance() distance.Adapter[T] { return s.dist }

// IndexParams returns the index configuration.
func (s *Searcher[T]) IndexParams() index.Params { return s.params }

// SearchParams returns the default query tuning.
func (s *Searcher[T]) SearchParams() index.SearchParams { return s.search }

// SetSearchParams replaces the default query tuning. The index is kept.
func (s *Searcher[T]) SetSearchParams(p index.SearchParams) error {
	if err := p.Validate(); err != nil {
		return translateError("set search params", err)
	}
	s.search = p
	return nil
}

// SetIndexParams switches the index variant or its tuning, rebuilding the
// index over the stored elements. On failure the previous index is kept.
func (s *Searcher[T]) SetIndexParams(p index.Params) error {
	const op = "set index params"
	if err := CheckConfig(s.dist, p); err != nil {
		return translateError(op, err)
	}
	if s.handle == nil {
		s.params = p
		return nil
	}
	plan := s.plan(ReasonConfig)
	plan.params = p
	return translateError(op, s.rebuild(plan))
}

// SetDistance replaces the distance adapter, rebuilding the index over the
// stored elements. On failure the previous adapter and index are kept.
func (s *Searcher[T]) SetDistance(dist distance.Adapter[T]) error {
	const op = "set distance"
	if err := CheckConfig(dist, s.params); err != nil {
		return translateError(op, err)
	}
	if s.handle == nil {
		s.dist = dist
		return nil
	}
	plan := s.plan(ReasonDistance)
	plan.dist = dist
	return translateError(op, s.rebuild(plan))
}

// Clear discards every element and the index.
func (s *Searcher[T]) Clear() {
	s.store.clear()
	s.handle = nil
}

// Reserve ensures room for n elements. With an index present this
// reallocates the store and rebuilds the index.
func (s *Searcher[T]) Reserve(n int) error {
	if n <= s.store.cap() {
		return nil
	}
	if s.handle == nil {
		s.store.reserve(n)
		return nil
	}
	plan := s.plan(ReasonReserve)
	plan.capacity = n
	return translateError("reserve", s.rebuild(plan))
}

// Add inserts e. The Searcher keeps e as given unless a copy function was
// set with WithClone, so a slice or pointer element must not be modified
// while it is stored.
func (s *Searcher[T]) Add(e T) error {
	return s.AddAll([]T{e})
}

// AddAll inserts es as one batch. The index is extended incrementally
// unless the store has to grow, in which case store and index are rebuilt
// with the new elements included.
func (s *Searcher[T]) AddAll(es []T) error {
	start := time.Now()
	err := translateError("add", s.add(es))
	s.logger.LogInsert(context.Background(), len(es), s.Size(), err)
	s.metrics.RecordInsert(len(es), time.Since(start), err)
	return err
}

func (s *Searcher[T]) add(es []T) error {
	if len(es) == 0 {
		return nil
	}
	for _, e := range es {
		if err := s.validate(e); err != nil {
			return err
		}
	}
	if s.clone != nil {
		copied := make([]T, len(es))
		for i, e := range es {
			copied[i] = s.clone(e)
		}
		es = copied
	}

	if s.handle == nil {
		n := s.store.len()
		s.store.pushAll(es)
		handle, err := BuildIndex(s.store.elements(), s.dist, s.params)
		if err != nil {
			s.store.truncate(n)
			return err
		}
		s.handle = handle
		return nil
	}

	if s.store.needsGrowth(len(es)) {
		plan := s.plan(ReasonGrowth)
		plan.capacity = s.store.grownCap(len(es))
		plan.extra = es
		return s.rebuild(plan)
	}

	rebalance := math.MaxFloat32 / float64(max(s.handle.Size(), 1))
	s.store.pushAll(es)
	return s.handle.AddPoints(s.store.tail(len(es)), rebalance)
}

func (s *Searcher[T]) validate(e T) error {
	if v, ok := s.dist.(distance.Validator[T]); ok {
		return v.Validate(e)
	}
	return nil
}

// Nearest returns the stored element closest to q.
func (s *Searcher[T]) Nearest(q T) (T, error) {
	start := time.Now()
	ns, err := s.nearest(q)
	s.observeSearch(QueryNearest, 1, len(ns), start, err)

	var zero T
	if err != nil {
		return zero, err
	}
	return ns[0].Element, nil
}

func (s *Searcher[T]) nearest(q T) ([]Neighbor[T], error) {
	if s.Size() == 0 {
		return nil, translateError("nearest", ErrEmptyStructure)
	}
	ns, err := s.knn(q, 1, s.search)
	if err != nil {
		return nil, translateError("nearest", err)
	}
	if len(ns) == 0 {
		return nil, translateError("nearest", ErrEmptyStructure)
	}
	return ns, nil
}

// NearestK returns the min(k, Size()) elements closest to q, ordered by
// non-decreasing distance. The order among ties is up to the index.
func (s *Searcher[T]) NearestK(q T, k int) ([]T, error) {
	ns, err := s.NearestKWithDistances(q, k)
	return elements(ns), err
}

// NearestKWithDistances is NearestK with the distance of every result.
func (s *Searcher[T]) NearestKWithDistances(q T, k int) ([]Neighbor[T], error) {
	start := time.Now()
	ns, err := s.knn(q, k, s.search)
	err = translateError("nearest k", err)
	s.observeSearch(QueryKNN, k, len(ns), start, err)
	if err != nil {
		return nil, err
	}
	return ns, nil
}

// NearestR returns every element within distance r of q, ordered by
// non-decreasing distance. Under approximate search parameters some
// elements may be missed; none farther than r is returned.
func (s *Searcher[T]) NearestR(q T, r float64) ([]T, error) {
	ns, err := s.NearestRWithDistances(q, r)
	return elements(ns), err
}

// NearestRWithDistances is NearestR with the distance of every result.
func (s *Searcher[T]) NearestRWithDistances(q T, r float64) ([]Neighbor[T], error) {
	start := time.Now()
	ns, err := s.radius(q, r)
	err = translateError("nearest r", err)
	s.observeSearch(QueryRadius, 0, len(ns), start, err)
	if err != nil {
		return nil, err
	}
	return ns, nil
}

func (s *Searcher[T]) radius(q T, r float64) ([]Neighbor[T], error) {
	if r < 0 || math.IsNaN(r) {
		return nil, ErrNegativeRadius
	}
	if s.Size() == 0 {
		return []Neighbor[T]{}, nil
	}
	if err := s.validate(q); err != nil {
		return nil, err
	}

	params := s.search
	params.Sorted = true
	res, err := s.handle.RadiusSearch(q, r, params)
	if err != nil {
		return nil, err
	}
	return s.resolve(res)
}

// List returns every stored element exactly once, found by an exact k-NN
// query with k = Size(). The configured search parameters are not touched.
func (s *Searcher[T]) List() ([]T, error) {
	start := time.Now()
	es, err := s.list()
	err = translateError("list", err)
	s.observeSearch(QueryList, len(es), len(es), start, err)
	if err != nil {
		return nil, err
	}
	return es, nil
}

func (s *Searcher[T]) list() ([]T, error) {
	size := s.Size()
	if size == 0 {
		return []T{}, nil
	}
	// Any query works: with k = size every element is returned.
	ns, err := s.knn(s.store.elements()[0], size, s.search.Exact())
	if err != nil {
		return nil, err
	}
	return elements(ns), nil
}

// Remove deletes one stored element equal to e, located with a k = 1
// query. It reports whether an element was removed. A removal rebuilds the
// index; if that rebuild fails the element is still removed and the error
// is returned alongside true.
func (s *Searcher[T]) Remove(e T) (bool, error) {
	start := time.Now()
	removed, err := s.remove(e)
	err = translateError("remove", err)
	s.logger.LogRemove(context.Background(), removed, err)
	s.metrics.RecordRemove(removed, time.Since(start), err)
	return removed, err
}

func (s *Searcher[T]) remove(e T) (bool, error) {
	if s.Size() == 0 {
		return false, nil
	}
	if err := s.validate(e); err != nil {
		return false, err
	}

	res, err := s.handle.KNNSearch(e, 1, s.search)
	if err != nil || len(res) == 0 {
		return false, err
	}
	p, err := s.handle.Point(res[0].ID)
	if err != nil {
		return false, err
	}
	if !s.equal(*p, e) {
		return false, nil
	}

	if err := s.handle.RemovePoint(res[0].ID); err != nil {
		return false, err
	}
	return true, s.rebuild(s.plan(ReasonRemoval))
}

func (s *Searcher[T]) knn(q T, k int, params index.SearchParams) ([]Neighbor[T], error) {
	if k < 0 {
		return nil, ErrInvalidK
	}
	size := s.Size()
	if size == 0 || k == 0 {
		return []Neighbor[T]{}, nil
	}
	if err := s.validate(q); err != nil {
		return nil, err
	}

	res, err := s.handle.KNNSearch(q, min(k, size), params)
	if err != nil {
		return nil, err
	}
	return s.resolve(res)
}

func (s *Searcher[T]) resolve(res []index.Neighbor) ([]Neighbor[T], error) {
	out := make([]Neighbor[T], len(res))
	for i, n := range res {
		p, err := s.handle.Point(n.ID)
		if err != nil {
			return nil, err
		}
		out[i] = Neighbor[T]{Element: *p, Distance: n.Distance}
	}
	return out, nil
}

func (s *Searcher[T]) observeSearch(kind QueryKind, k, found int, start time.Time, err error) {
	s.logger.LogSearch(context.Background(), kind, k, found, err)
	s.metrics.RecordSearch(kind, k, found, time.Since(start), err)
}

func elements[T any](ns []Neighbor[T]) []T {
	if ns == nil {
		return nil
	}
	out := make([]T, len(ns))
	for i, n := range ns {
		out[i] = n.Element
	}
	return out
}
