// Package vector holds exact nearest-neighbour helpers shared by the local
// embedding index backends. Network backends live in subpackages.
package vector

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// SquaredL2 returns the squared Euclidean distance between a and b.
// Ranking by squared distance matches ranking by distance.
func SquaredL2(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d != %d", len(a), len(b))
	}
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum, nil
}

// Candidate is a stored vector considered during an exact search.
type Candidate struct {
	Seq    int64
	Path   string
	Vector []float32
}

// Nearest ranks candidates by squared L2 distance and returns the top k.
// Ties are broken by insertion sequence so results are deterministic.
func Nearest(query []float32, candidates []Candidate, k int) ([]driven.VectorHit, error) {
	if k <= 0 || len(candidates) == 0 {
		return []driven.VectorHit{}, nil
	}

	type scored struct {
		seq  int64
		path string
		dist float32
	}
	all := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		d, err := SquaredL2(query, c.Vector)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", c.Path, err)
		}
		all = append(all, scored{seq: c.Seq, path: c.Path, dist: d})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		return all[i].seq < all[j].seq
	})

	if k > len(all) {
		k = len(all)
	}
	hits := make([]driven.VectorHit, k)
	for i := 0; i < k; i++ {
		hits[i] = driven.VectorHit{Path: all[i].path, Distance: all[i].dist}
	}
	return hits, nil
}
