package analysis

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// ErrNoRows is returned when clustering an empty matrix.
var ErrNoRows = errors.New("no rows to cluster")

// KMeans partitions rows into K groups by Lloyd's algorithm with k-means++
// seeding, keeping the best of NInit restarts.
type KMeans struct {
	K         int
	Seed      int64
	NInit     int
	MaxIter   int
	Tolerance float64
}

// Clustering is the fitted result.
type Clustering struct {
	K       int
	Labels  []int
	Inertia float64
	Iters   int
}

// Fit clusters rows. K is lowered to the number of distinct rows so that no
// cluster is seeded without a member.
func (km *KMeans) Fit(rows [][]float64) (*Clustering, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	k := km.K
	if d := distinctRows(rows); k > d {
		k = d
	}
	if k < 1 {
		k = 1
	}

	nInit := max(km.NInit, 1)
	maxIter := max(km.MaxIter, 1)
	tol := km.Tolerance * meanVariance(rows)

	rng := rand.New(rand.NewSource(km.Seed))

	var best *Clustering
	for run := 0; run < nInit; run++ {
		c := lloyd(rows, seedCentroids(rows, k, rng), maxIter, tol)
		if best == nil || c.Inertia < best.Inertia {
			best = c
		}
	}
	return best, nil
}

// seedCentroids picks k starting centroids by k-means++.
func seedCentroids(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := rows[rng.Intn(len(rows))]
	centroids = append(centroids, append([]float64(nil), first...))

	dist := make([]float64, len(rows))
	for len(centroids) < k {
		var total float64
		for i, row := range rows {
			dist[i] = nearestSq(row, centroids)
			total += dist[i]
		}

		idx := rng.Intn(len(rows))
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target <= 0 && d > 0 {
					idx = i
					break
				}
			}
		}
		centroids = append(centroids, append([]float64(nil), rows[idx]...))
	}
	return centroids
}

func lloyd(rows [][]float64, centroids [][]float64, maxIter int, tol float64) *Clustering {
	k := len(centroids)
	dim := len(rows[0])
	labels := make([]int, len(rows))

	iter := 0
	for iter < maxIter {
		iter++
		assign(rows, centroids, labels)
		counts := countLabels(labels, k)
		reseedEmpty(rows, centroids, labels, counts)

		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, row := range rows {
			floats.Add(next[labels[i]], row)
		}
		for c := range next {
			if counts[c] == 0 {
				copy(next[c], centroids[c])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}

		var shift float64
		for c := range next {
			d := floats.Distance(next[c], centroids[c], 2)
			shift += d * d
		}
		centroids = next
		if shift <= tol {
			break
		}
	}

	inertia := assign(rows, centroids, labels)
	// coinciding centroids can still leave a cluster empty after the last pass
	if filled := reseedEmpty(rows, centroids, labels, countLabels(labels, k)); len(filled) > 0 {
		for _, c := range filled {
			for i, label := range labels {
				if label == c {
					centroids[c] = append([]float64(nil), rows[i]...)
				}
			}
		}
		inertia = inertiaOf(rows, centroids, labels)
	}

	return &Clustering{
		K:       k,
		Labels:  labels,
		Inertia: inertia,
		Iters:   iter,
	}
}

// reseedEmpty gives every empty cluster the row farthest from its centroid,
// taken only from clusters with more than one member. labels and counts are
// updated in place. It returns the clusters that were filled.
func reseedEmpty(rows, centroids [][]float64, labels, counts []int) []int {
	var filled []int
	for c := range counts {
		if counts[c] > 0 {
			continue
		}
		far, best := -1, -1.0
		for i, row := range rows {
			if counts[labels[i]] < 2 {
				continue
			}
			if d := floats.Distance(row, centroids[labels[i]], 2); d > best {
				far, best = i, d
			}
		}
		if far < 0 {
			break
		}
		counts[labels[far]]--
		labels[far] = c
		counts[c] = 1
		filled = append(filled, c)
	}
	return filled
}

func countLabels(labels []int, k int) []int {
	counts := make([]int, k)
	for _, label := range labels {
		counts[label]++
	}
	return counts
}

func inertiaOf(rows, centroids [][]float64, labels []int) float64 {
	var inertia float64
	for i, row := range rows {
		d := floats.Distance(row, centroids[labels[i]], 2)
		inertia += d * d
	}
	return inertia
}

// assign labels each row with its nearest centroid and returns the inertia.
func assign(rows, centroids [][]float64, labels []int) float64 {
	var inertia float64
	for i, row := range rows {
		bestC, bestD := 0, math.Inf(1)
		for c, centroid := range centroids {
			d := floats.Distance(row, centroid, 2)
			if d*d < bestD {
				bestC, bestD = c, d*d
			}
		}
		labels[i] = bestC
		inertia += bestD
	}
	return inertia
}

func nearestSq(row []float64, centroids [][]float64) float64 {
	best := math.Inf(1)
	for _, c := range centroids {
		d := floats.Distance(row, c, 2)
		best = math.Min(best, d*d)
	}
	return best
}

func meanVariance(rows [][]float64) float64 {
	n := float64(len(rows))
	dim := len(rows[0])
	if dim == 0 {
		return 0
	}
	col := make([]float64, len(rows))
	var sum float64
	for j := 0; j < dim; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		mean := floats.Sum(col) / n
		var v float64
		for _, x := range col {
			v += (x - mean) * (x - mean)
		}
		sum += v / n
	}
	return sum / float64(dim)
}

func distinctRows(rows [][]float64) int {
	distinct := make([][]float64, 0, len(rows))
	for _, row := range rows {
		dup := false
		for _, d := range distinct {
			if floats.Equal(row, d) {
				dup = true
				break
			}
		}
		if !dup {
			distinct = append(distinct, row)
		}
	}
	return len(distinct)
}
