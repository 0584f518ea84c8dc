package nnsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreGrowth(t *testing.T) {
	s := newStore[int](0)
	assert.True(t, s.needsGrowth(1))

	s.push(1)
	assert.Equal(t, 1, s.cap())
	s.push(2)
	assert.Equal(t, 2, s.cap())
	s.push(3)
	assert.Equal(t, 4, s.cap())

	// The exact new size wins over doubling.
	s.pushAll([]int{4, 5, 6, 7, 8, 9, 10, 11, 12})
	assert.Equal(t, 12, s.cap())
	assert.Equal(t, 12, s.len())
	assert.Equal(t, []int{10, 11, 12}, s.tail(3))
}

func TestStoreNoReallocationWithinCapacity(t *testing.T) {
	s := newStore[int](4)
	s.push(1)
	first := &s.elements()[0]
	s.pushAll([]int{2, 3, 4})
	assert.Same(t, first, &s.elements()[0])
	assert.False(t, s.needsGrowth(0))
	assert.True(t, s.needsGrowth(1))
}

func TestStoreReserveAndTruncate(t *testing.T) {
	s := newStore[string](0)
	s.pushAll([]string{"a", "b", "c"})
	s.reserve(2)
	assert.Equal(t, 3, s.cap())
	s.reserve(10)
	assert.Equal(t, 10, s.cap())
	assert.Equal(t, []string{"a", "b", "c"}, s.elements())

	s.truncate(1)
	assert.Equal(t, []string{"a"}, s.elements())
	assert.Equal(t, "", s.buf[:3][1])

	s.clear()
	assert.Equal(t, 0, s.len())
	assert.Equal(t, 0, s.cap())
}
