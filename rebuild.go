package nnsearch

import (
	"context"
	"time"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
)

// RebuildReason names what forced a full rebuild of the index.
type RebuildReason string

// Rebuild reasons.
const (
	// ReasonGrowth: the element store had to reallocate.
	ReasonGrowth RebuildReason = "growth"
	// ReasonDistance: the distance adapter changed.
	ReasonDistance RebuildReason = "distance"
	// ReasonConfig: the index parameters changed.
	ReasonConfig RebuildReason = "config"
	// ReasonRemoval: an element was removed.
	ReasonRemoval RebuildReason = "removal"
	// ReasonReserve: capacity was reserved while an index existed.
	ReasonReserve RebuildReason = "reserve"
)

// rebuildPlan describes the structure a rebuild produces.
type rebuildPlan[T any] struct {
	reason   RebuildReason
	dist     distance.Adapter[T]
	params   index.Params
	capacity int
	extra    []T
}

// rebuild lists every element through the current index, then builds a new
// store and index from that snapshot plus plan.extra. The new state replaces
// the old one only once it is complete; on failure nothing changes.
func (s *Searcher[T]) rebuild(plan rebuildPlan[T]) error {
	start := time.Now()

	snapshot, err := s.list()
	if err != nil {
		return err
	}

	next := newStore[T](max(plan.capacity, len(snapshot)+len(plan.extra)))
	next.pushAll(snapshot)
	next.pushAll(plan.extra)

	var handle index.Index[T]
	if next.len() > 0 {
		handle, err = BuildIndex(next.elements(), plan.dist, plan.params)
	}

	took := time.Since(start)
	s.logger.WithAlgorithm(plan.params.Algorithm()).LogRebuild(context.Background(), plan.reason, next.len(), took, err)
	s.metrics.RecordRebuild(plan.reason, next.len(), took, err)
	if err != nil {
		return err
	}

	s.store, s.handle = next, handle
	s.dist, s.params = plan.dist, plan.params
	return nil
}

// plan returns a rebuild plan that keeps the current configuration.
func (s *Searcher[T]) plan(reason RebuildReason) rebuildPlan[T] {
	return rebuildPlan[T]{
		reason:   reason,
		dist:     s.dist,
		params:   s.params,
		capacity: s.store.cap(),
	}
}
