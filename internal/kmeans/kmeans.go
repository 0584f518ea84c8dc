package kmeans

import (
	"math"
	"math/rand"

	"github.com/hupe1980/nnsearch/distance"
)

// Init selects how initial centers are chosen.
type Init int

// Initialisation methods.
const (
	InitRandom Init = iota
	InitGonzales
	InitKMeansPP
)

// ChooseCenters picks up to k ids from ids as initial cluster centers.
// Points at distance zero from an already chosen center are skipped, so
// fewer than k centers are returned when ids hold fewer distinct points.
func ChooseCenters(method Init, k int, ids []int, dist func(a, b int) float64, rng *rand.Rand) []int {
	if k <= 0 || len(ids) == 0 {
		return nil
	}
	switch method {
	case InitGonzales:
		return gonzales(k, ids, dist, rng)
	case InitKMeansPP:
		return kmeansPP(k, ids, dist, rng)
	default:
		return random(k, ids, dist, rng)
	}
}

func random(k int, ids []int, dist func(a, b int) float64, rng *rand.Rand) []int {
	centers := make([]int, 0, k)
	for _, p := range rng.Perm(len(ids)) {
		if len(centers) == k {
			break
		}
		cand := ids[p]
		dup := false
		for _, c := range centers {
			if dist(cand, c) == 0 {
				dup = true
				break
			}
		}
		if !dup {
			centers = append(centers, cand)
		}
	}
	return centers
}

// gonzales repeatedly picks the point farthest from the chosen centers.
func gonzales(k int, ids []int, dist func(a, b int) float64, rng *rand.Rand) []int {
	centers := []int{ids[rng.Intn(len(ids))]}
	minDist := make([]float64, len(ids))
	for i, id := range ids {
		minDist[i] = dist(id, centers[0])
	}

	for len(centers) < k {
		best, bestDist := -1, 0.0
		for i, d := range minDist {
			if d > bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			break
		}
		c := ids[best]
		centers = append(centers, c)
		for i, id := range ids {
			if d := dist(id, c); d < minDist[i] {
				minDist[i] = d
			}
		}
	}
	return centers
}

// kmeansPP samples each next center with probability proportional to its
// squared distance from the chosen centers.
func kmeansPP(k int, ids []int, dist func(a, b int) float64, rng *rand.Rand) []int {
	centers := []int{ids[rng.Intn(len(ids))]}
	pot := make([]float64, len(ids))
	var total float64
	for i, id := range ids {
		d := dist(id, centers[0])
		pot[i] = d * d
		total += pot[i]
	}

	for len(centers) < k && total > 0 {
		r := rng.Float64() * total
		pick := -1
		for i, p := range pot {
			if p == 0 {
				continue
			}
			pick = i
			if r < p {
				break
			}
			r -= p
		}
		if pick < 0 {
			break
		}

		c := ids[pick]
		centers = append(centers, c)
		total = 0
		for i, id := range ids {
			d := dist(id, c)
			if d*d < pot[i] {
				pot[i] = d * d
			}
			total += pot[i]
		}
	}
	return centers
}

// Train refines centers with Lloyd's algorithm over rows and returns the
// assignment of each row. maxIter < 0 iterates until assignments converge.
// Empty clusters take over a row from a cluster with more than one member.
func Train(rows [][]float64, centers [][]float64, maxIter int, rng *rand.Rand) []int {
	k := len(centers)
	n := len(rows)
	if k == 0 || n == 0 {
		return make([]int, n)
	}
	dim := len(centers[0])

	assignments := make([]int, n)
	for i, row := range rows {
		assignments[i], _ = Nearest(row, centers)
	}
	counts := make([]int, k)
	sums := make([][]float64, k)
	for j := range sums {
		sums[j] = make([]float64, dim)
	}

	for iter := 0; maxIter < 0 || iter < maxIter; iter++ {
		// Update step
		for j := range k {
			counts[j] = 0
			clear(sums[j])
		}
		for i, row := range rows {
			c := assignments[i]
			counts[c]++
			for d, v := range row {
				sums[c][d] += v
			}
		}

		for j := range k {
			if counts[j] == 0 {
				i := steal(assignments, counts, rng)
				if i < 0 {
					continue
				}
				counts[assignments[i]]--
				assignments[i] = j
				counts[j] = 1
				copy(centers[j], rows[i])
				continue
			}
			scale := 1 / float64(counts[j])
			for d := range dim {
				centers[j][d] = sums[j][d] * scale
			}
		}

		// Assignment step
		changed := false
		for i, row := range rows {
			best, _ := Nearest(row, centers)
			if best != assignments[i] && counts[assignments[i]] > 1 {
				counts[assignments[i]]--
				counts[best]++
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return assignments
}

func steal(assignments, counts []int, rng *rand.Rand) int {
	n := len(assignments)
	start := rng.Intn(n)
	for off := range n {
		i := (start + off) % n
		if counts[assignments[i]] > 1 {
			return i
		}
	}
	return -1
}

// Nearest returns the index of the center closest to vec and its Euclidean
// distance.
func Nearest(vec []float64, centers [][]float64) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for j, c := range centers {
		if d := distance.SquaredEuclidean(vec, c); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, math.Sqrt(bestDist)
}
