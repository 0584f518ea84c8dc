// Package bitmap provides a compressed set of point ids backed by a Roaring
// bitmap.
package bitmap

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Set is a set of non-negative point ids.
// It wraps the official roaring implementation.
type Set struct {
	rb *roaring.Bitmap
}

// New creates a new empty set.
func New() *Set {
	return &Set{rb: roaring.New()}
}

// Add adds an id to the set.
func (s *Set) Add(id int) {
	s.rb.Add(uint32(id))
}

// CheckedAdd adds an id and reports whether it was absent.
func (s *Set) CheckedAdd(id int) bool {
	return s.rb.CheckedAdd(uint32(id))
}

// Remove removes an id from the set.
func (s *Set) Remove(id int) {
	s.rb.Remove(uint32(id))
}

// Contains checks if an id is in the set.
func (s *Set) Contains(id int) bool {
	if id < 0 {
		return false
	}
	return s.rb.Contains(uint32(id))
}

// Cardinality returns the number of ids in the set.
func (s *Set) Cardinality() int {
	return int(s.rb.GetCardinality())
}

// IsEmpty returns true if the set is empty.
func (s *Set) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// ForEach iterates over the set in ascending order until fn returns false.
func (s *Set) ForEach(fn func(id int) bool) {
	it := s.rb.Iterator()
	for it.HasNext() {
		if !fn(int(it.Next())) {
			break
		}
	}
}

// Clear removes all ids.
func (s *Set) Clear() {
	s.rb.Clear()
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	return &Set{rb: s.rb.Clone()}
}
