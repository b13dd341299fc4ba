package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/gilchrisn/graph-summarization-service/pkg/louvain"
	"github.com/gilchrisn/graph-summarization-service/pkg/summary"
)

// DefaultMaxGroupSize bounds the quadratic candidate search within a group.
const DefaultMaxGroupSize = 500

// Community blocks candidates by Louvain community and, within each block,
// merges a supernode with its most Jaccard-similar peer when the savings
// clear a threshold that starts at 1/2 and falls as 1/(1+t) with the
// iteration t, never below ThresholdFloor.
type Community struct {
	Louvain        *louvain.Config
	ThresholdFloor float64
	MaxGroupSize   int

	communities []int
}

func NewCommunity(config *louvain.Config, thresholdFloor float64) *Community {
	if config == nil {
		config = louvain.NewConfig()
	}
	return &Community{
		Louvain:        config,
		ThresholdFloor: thresholdFloor,
		MaxGroupSize:   DefaultMaxGroupSize,
	}
}

func (c *Community) Name() string { return "community" }

// Initial detects communities on the symmetrised graph.
func (c *Community) Initial(ctx context.Context, s *summary.Session) error {
	result, err := louvain.Run(louvain.FromView(s.Graph()), c.Louvain, ctx)
	if err != nil {
		return fmt.Errorf("community detection: %w", err)
	}
	c.communities = result.Communities
	return nil
}

// Threshold is the savings a merge must reach in iteration t.
func (c *Community) Threshold(iteration int) float64 {
	return max(1/(1+float64(iteration+1)), c.ThresholdFloor)
}

// Divide groups the surviving supernodes by community, splitting groups
// larger than MaxGroupSize. Singleton groups are left out.
func (c *Community) Divide(s *summary.Session, iteration int) ([][]int, error) {
	if len(c.communities) != s.NumVertices() {
		return nil, fmt.Errorf("%w: %d labels for %d vertices",
			ErrAssignmentSize, len(c.communities), s.NumVertices())
	}
	limit := c.MaxGroupSize
	if limit < 2 {
		limit = DefaultMaxGroupSize
	}

	var groups [][]int
	for _, g := range groupBy(s.Supernodes(), func(rep int) int { return c.communities[rep] }) {
		for len(g) > limit {
			groups = append(groups, g[:limit])
			g = g[limit:]
		}
		if len(g) > 1 {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

// Merge walks each group once. Every live supernode is paired with its most
// similar live peer and merged when the savings reach the threshold. Peers
// sharing no neighbour are never candidates.
func (c *Community) Merge(s *summary.Session, groups [][]int, iteration int) (int, error) {
	threshold := c.Threshold(iteration)
	merges := 0
	for _, group := range groups {
		n, err := c.mergeGroup(s, group, threshold)
		merges += n
		if err != nil {
			return merges, err
		}
	}
	return merges, nil
}

func (c *Community) mergeGroup(s *summary.Session, group []int, threshold float64) (int, error) {
	reps := append([]int(nil), group...)
	weights, err := s.BuildBatch(reps)
	if err != nil {
		return 0, err
	}
	alive := make([]bool, len(reps))
	for i := range alive {
		alive[i] = true
	}

	merges := 0
	for i := range reps {
		if !alive[i] {
			continue
		}
		best, bestSim := -1, 0.0
		for j := range reps {
			if j == i || !alive[j] {
				continue
			}
			sim, err := s.Jaccard(weights[i], weights[j])
			if errors.Is(err, summary.ErrIndeterminate) {
				continue
			}
			if err != nil {
				return merges, err
			}
			if sim > bestSim {
				best, bestSim = j, sim
			}
		}
		if best < 0 {
			continue
		}

		savings, err := s.Savings(weights[i], weights[best], reps[i], reps[best])
		if errors.Is(err, summary.ErrIndeterminate) {
			continue
		}
		if err != nil {
			return merges, err
		}
		if savings < threshold {
			continue
		}

		survivor, err := s.Merge(reps[i], reps[best])
		if err != nil {
			return merges, err
		}
		combined := summary.Combine(weights[i], weights[best])
		keep, drop := i, best
		if survivor == reps[best] {
			keep, drop = best, i
		}
		weights[keep] = combined
		alive[drop] = false
		weights[drop] = nil
		merges++
	}
	return merges, nil
}
