package summary

import "fmt"

// Jaccard returns the weighted Jaccard similarity of two weight vectors:
// the sum of per-key minimums over the sum of per-key maximums. Two empty
// vectors give ErrIndeterminate.
func Jaccard(wa, wb WeightVector) (float64, error) {
	up, down := 0, 0
	wa.Range(func(k, n int) bool {
		if n == 0 {
			return true
		}
		m := wb.Get(k)
		up += min(n, m)
		down += max(n, m)
		return true
	})
	wb.Range(func(k, n int) bool {
		if wa.Get(k) == 0 {
			down += n
		}
		return true
	})
	if down == 0 {
		return 0, ErrIndeterminate
	}
	return float64(up) / float64(down), nil
}

// Estimator scores candidate merges against the current partition.
type Estimator struct {
	partition *Partition
	symmetric bool
}

// NewEstimator creates an Estimator. With symmetric set, arcs from b into a
// are assumed to mirror arcs from a into b and are not counted twice in the
// merged self block.
func NewEstimator(p *Partition, symmetric bool) *Estimator {
	return &Estimator{partition: p, symmetric: symmetric}
}

// blockCost is the cost of an adjacency block with e arcs out of compare
// possible cells: list the arcs when sparse, otherwise declare the block
// and list the missing cells plus one for the superedge itself.
func blockCost(e, compare float64) float64 {
	if e <= compare/2 {
		return e
	}
	return 1 + compare - e
}

// Savings estimates the fractional reduction in encoding cost from merging
// supernode a (weight vector wa) with supernode b (weight vector wb). It
// returns ErrIndeterminate when neither side has any cost to save and
// ErrSelfMerge when a and b are the same supernode.
func (e *Estimator) Savings(wa, wb WeightVector, a, b int) (float64, error) {
	if a == b {
		return 0, fmt.Errorf("%w: %d", ErrSelfMerge, a)
	}
	numA, err := e.partition.Size(a)
	if err != nil {
		return 0, err
	}
	numB, err := e.partition.Size(b)
	if err != nil {
		return 0, err
	}

	// neighbour supernode -> member count, and arcs from a / b into it
	candidateSize := make(map[int]int)
	spA := make(map[int]int)
	spB := make(map[int]int)

	group := func(w WeightVector, sp map[int]int) error {
		var rangeErr error
		w.Range(func(key, n int) bool {
			k, err := e.partition.Owner(key)
			if err != nil {
				rangeErr = err
				return false
			}
			if _, ok := candidateSize[k]; !ok {
				size, err := e.partition.Size(k)
				if err != nil {
					rangeErr = err
					return false
				}
				candidateSize[k] = size
			}
			sp[k] += n
			return true
		})
		return rangeErr
	}
	if err := group(wa, spA); err != nil {
		return 0, err
	}
	if err := group(wb, spB); err != nil {
		return 0, err
	}

	fa, fb := float64(numA), float64(numB)
	fab := fa + fb
	var costA, costB, costAUnionB float64

	for k, edges := range spA {
		compare := fa * float64(candidateSize[k])
		if k == a {
			compare = fa * (fa - 1) / 2
		}
		costA += blockCost(float64(edges), compare)

		if k == a || k == b {
			continue
		}
		costAUnionB += blockCost(float64(edges+spB[k]), fab*float64(candidateSize[k]))
	}
	for k, edges := range spB {
		compare := fb * float64(candidateSize[k])
		if k == b {
			compare = fb * (fb - 1) / 2
		}
		costB += blockCost(float64(edges), compare)

		if k == a || k == b {
			continue
		}
		if _, ok := spA[k]; !ok {
			costAUnionB += blockCost(float64(edges), fab*float64(candidateSize[k]))
		}
	}

	// a-self, a<->b and b-self arcs all land in the merged self block
	inner := spA[a] + spA[b] + spB[b]
	if !e.symmetric {
		inner += spB[a]
	}
	if inner > 0 {
		costAUnionB += blockCost(float64(inner), fab*(fab-1)/2)
	}

	if costA+costB == 0 {
		return 0, ErrIndeterminate
	}
	return 1 - costAUnionB/(costA+costB), nil
}
