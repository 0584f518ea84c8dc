package index

import (
	"container/heap"
	"slices"
)

// SortNeighbors orders neighbors by ascending distance, then id.
func SortNeighbors(ns []Neighbor) {
	slices.SortFunc(ns, compareNeighbors)
}

func compareNeighbors(a, b Neighbor) int {
	switch {
	case a.Distance < b.Distance:
		return -1
	case a.Distance > b.Distance:
		return 1
	default:
		return a.ID - b.ID
	}
}

// MergeNeighbors merges lists sorted by ascending distance into a single
// sorted list of at most k entries (all entries when k is Unlimited).
// An id reported by several lists is kept once.
func MergeNeighbors(k int, lists ...[]Neighbor) []Neighbor {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	if k == Unlimited || k > total {
		k = total
	}

	res := make([]Neighbor, 0, k)
	seen := make(map[int]struct{}, k)

	h := &mergeHeap{}
	for i, list := range lists {
		if len(list) > 0 {
			*h = append(*h, mergeItem{res: list[0], listIdx: i})
		}
	}
	heap.Init(h)

	for h.Len() > 0 && len(res) < k {
		item := heap.Pop(h).(mergeItem)
		if _, dup := seen[item.res.ID]; !dup {
			seen[item.res.ID] = struct{}{}
			res = append(res, item.res)
		}

		if next := item.elemIdx + 1; next < len(lists[item.listIdx]) {
			heap.Push(h, mergeItem{
				res:     lists[item.listIdx][next],
				listIdx: item.listIdx,
				elemIdx: next,
			})
		}
	}

	return res
}

type mergeItem struct {
	res     Neighbor
	listIdx int
	elemIdx int
}

type mergeHeap []mergeItem

func (h mergeHeap) Len() int           { return len(h) }
func (h mergeHeap) Less(i, j int) bool { return compareNeighbors(h[i].res, h[j].res) < 0 }
func (h mergeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) {
	*h = append(*h, x.(mergeItem))
}

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
