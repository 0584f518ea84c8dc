package kdtree

import (
	"math/rand"
	"slices"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/internal/dataset"
)

const (
	// sampleMean is the number of points used to estimate split statistics.
	sampleMean = 100

	// randDim is the number of highest variance dimensions a split
	// dimension is drawn from.
	randDim = 5
)

// space gives coordinate access to the points of an index.
type space[E any] struct {
	coords distance.Coordinates[E]
	points *dataset.Points[E]
}

func (s space[E]) coord(id, dim int) float64 {
	return s.coords.Coordinate(s.points.At(id), dim)
}

// meanSplit picks a split dimension at random among the dimensions of
// highest variance and cuts at the mean.
func (s space[E]) meanSplit(ind []int, rng *rand.Rand) (int, float64) {
	dim := s.coords.Dimension()
	cnt := min(sampleMean+1, len(ind))

	mean := make([]float64, dim)
	variance := make([]float64, dim)
	for _, id := range ind[:cnt] {
		for d := range dim {
			mean[d] += s.coord(id, d)
		}
	}
	for d := range dim {
		mean[d] /= float64(cnt)
	}
	for _, id := range ind[:cnt] {
		for d := range dim {
			diff := s.coord(id, d) - mean[d]
			variance[d] += diff * diff
		}
	}

	cutfeat := selectDivision(variance, rng)
	return cutfeat, mean[cutfeat]
}

func selectDivision(variance []float64, rng *rand.Rand) int {
	order := make([]int, len(variance))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case variance[a] > variance[b]:
			return -1
		case variance[a] < variance[b]:
			return 1
		default:
			return 0
		}
	})
	return order[rng.Intn(min(randDim, len(order)))]
}

// planeSplit reorders ind so that ind[:lim1] < cutval, ind[lim1:lim2] ==
// cutval and ind[lim2:] > cutval along cutfeat.
func (s space[E]) planeSplit(ind []int, cutfeat int, cutval float64) (lim1, lim2 int) {
	left, right := 0, len(ind)-1
	for {
		for left <= right && s.coord(ind[left], cutfeat) < cutval {
			left++
		}
		for left <= right && s.coord(ind[right], cutfeat) >= cutval {
			right--
		}
		if left > right {
			break
		}
		ind[left], ind[right] = ind[right], ind[left]
		left++
		right--
	}
	lim1 = left

	right = len(ind) - 1
	for {
		for left <= right && s.coord(ind[left], cutfeat) <= cutval {
			left++
		}
		for left <= right && s.coord(ind[right], cutfeat) > cutval {
			right--
		}
		if left > right {
			break
		}
		ind[left], ind[right] = ind[right], ind[left]
		left++
		right--
	}
	lim2 = left
	return lim1, lim2
}

// splitIndex chooses the partition point of a plane split so that both
// sides are non-empty and as balanced as the ties allow.
func splitIndex(count, lim1, lim2 int) int {
	switch {
	case lim1 == count || lim2 == 0:
		return count / 2
	case lim1 > count/2:
		return lim1
	case lim2 < count/2:
		return lim2
	default:
		return count / 2
	}
}
