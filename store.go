package nnsearch

// store owns every inserted element. Its capacity is managed explicitly:
// indexes hold pointers into the backing array, so the array must only be
// reallocated when the caller rebuilds the index afterwards.
type store[T any] struct {
	buf []T
}

func newStore[T any](capacity int) *store[T] {
	return &store[T]{buf: make([]T, 0, max(capacity, 0))}
}

func (s *store[T]) len() int { return len(s.buf) }

func (s *store[T]) cap() int { return cap(s.buf) }

// needsGrowth reports whether appending extra elements reallocates.
func (s *store[T]) needsGrowth(extra int) bool {
	return len(s.buf)+extra > cap(s.buf)
}

// grownCap returns the capacity after growing for extra elements: at least
// double the current capacity, or the exact new size if larger.
func (s *store[T]) grownCap(extra int) int {
	return max(2*cap(s.buf), len(s.buf)+extra)
}

func (s *store[T]) reserve(n int) {
	if n <= cap(s.buf) {
		return
	}
	buf := make([]T, len(s.buf), n)
	copy(buf, s.buf)
	s.buf = buf
}

func (s *store[T]) push(e T) {
	if s.needsGrowth(1) {
		s.reserve(s.grownCap(1))
	}
	s.buf = append(s.buf, e)
}

func (s *store[T]) pushAll(es []T) {
	if s.needsGrowth(len(es)) {
		s.reserve(s.grownCap(len(es)))
	}
	s.buf = append(s.buf, es...)
}

// truncate drops the elements past n, zeroing them.
func (s *store[T]) truncate(n int) {
	clear(s.buf[n:])
	s.buf = s.buf[:n]
}

// tail returns the last n elements, aliasing the backing array.
func (s *store[T]) tail(n int) []T {
	return s.buf[len(s.buf)-n:]
}

// elements returns all elements, aliasing the backing array.
func (s *store[T]) elements() []T {
	return s.buf
}

func (s *store[T]) clear() {
	s.buf = nil
}
