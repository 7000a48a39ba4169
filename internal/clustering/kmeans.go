package clustering

import (
	"math"
	"math/rand"
)

type kmeansResult struct {
	labels     []int
	centroids  [][]float64
	iterations int
}

// kmeans partitions points into at most k groups using k-means++ seeding and
// Lloyd iterations on squared Euclidean distance. Fewer than k centroids are
// used when the points have fewer than k distinct positions.
func kmeans(points []vector, dim, k, maxIter int, rng *rand.Rand) kmeansResult {
	centroids := seedCentroids(points, dim, k, rng)
	k = len(centroids)

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	dists := make([]float64, len(points))
	iter := 0
	for iter < maxIter {
		iter++
		norms := centroidNorms(centroids)

		changed := false
		for i, p := range points {
			best, bestDist := nearest(p, centroids, norms)
			dists[i] = bestDist
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		counts := make([]int, k)
		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for j, idx := range p.indices {
				next[c][idx] += p.values[j]
			}
		}

		relocated := make(map[int]bool)
		for c := range next {
			if counts[c] == 0 {
				// Empty cluster takes over the point farthest from its centroid.
				far := farthest(dists, relocated)
				if far < 0 {
					next[c] = centroids[c]
					continue
				}
				relocated[far] = true
				next[c] = densify(points[far], dim)
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(counts[c])
			}
		}
		centroids = next
	}

	return kmeansResult{labels: labels, centroids: centroids, iterations: iter}
}

// seedCentroids chooses up to k initial centroids with k-means++.
func seedCentroids(points []vector, dim, k int, rng *rand.Rand) [][]float64 {
	if len(points) == 0 || k < 1 {
		return nil
	}

	first := rng.Intn(len(points))
	centroids := [][]float64{densify(points[first], dim)}

	d2 := make([]float64, len(points))
	for i, p := range points {
		d2[i] = sqDist(p, centroids[0], squaredNorm(centroids[0]))
	}

	for len(centroids) < k {
		var total float64
		for _, d := range d2 {
			total += d
		}
		if total <= 1e-12 {
			break
		}

		target := rng.Float64() * total
		chosen := len(points) - 1
		var cum float64
		for i, d := range d2 {
			cum += d
			if cum >= target && d > 0 {
				chosen = i
				break
			}
		}

		c := densify(points[chosen], dim)
		centroids = append(centroids, c)
		cn := squaredNorm(c)
		for i, p := range points {
			if d := sqDist(p, c, cn); d < d2[i] {
				d2[i] = d
			}
		}
	}

	return centroids
}

// nearest returns the index of the closest centroid. Ties go to the lowest index.
func nearest(p vector, centroids [][]float64, norms []float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(p, centroid, norms[c]); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

func farthest(dists []float64, exclude map[int]bool) int {
	idx, maxDist := -1, 0.0
	for i, d := range dists {
		if exclude[i] {
			continue
		}
		if d > maxDist {
			idx, maxDist = i, d
		}
	}
	return idx
}

func sqDist(p vector, centroid []float64, centroidNorm float64) float64 {
	d := p.norm2() - 2*p.dot(centroid) + centroidNorm
	if d < 0 {
		return 0
	}
	return d
}

func squaredNorm(dense []float64) float64 {
	var sum float64
	for _, x := range dense {
		sum += x * x
	}
	return sum
}

func centroidNorms(centroids [][]float64) []float64 {
	norms := make([]float64, len(centroids))
	for i, c := range centroids {
		norms[i] = squaredNorm(c)
	}
	return norms
}

func densify(v vector, dim int) []float64 {
	dense := make([]float64, dim)
	for j, idx := range v.indices {
		dense[idx] = v.values[j]
	}
	return dense
}

// cosine returns the cosine similarity between a sparse vector and a dense one.
func cosine(p vector, dense []float64) float64 {
	pn, dn := p.norm2(), squaredNorm(dense)
	if pn == 0 || dn == 0 {
		return 0
	}
	return p.dot(dense) / (math.Sqrt(pn) * math.Sqrt(dn))
}
