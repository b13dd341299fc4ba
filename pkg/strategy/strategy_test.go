package strategy

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
	"github.com/gilchrisn/graph-summarization-service/pkg/louvain"
	"github.com/gilchrisn/graph-summarization-service/pkg/summary"
)

func quietConfig() *summary.Config {
	c := summary.NewConfig()
	c.Set("logging.level", "disabled")
	return c
}

func quietLouvain() *louvain.Config {
	c := louvain.NewConfig()
	c.Set("logging.level", "disabled")
	return c
}

// twoBicliques has vertices 0,1 -> 2,3 and 4,5 -> 6,7, both as undirected
// edges, joined by a single 3-4 edge.
func twoBicliques(t *testing.T) *graph.Graph {
	g := graph.NewGraph(8)
	for _, e := range [][2]int{{0, 2}, {0, 3}, {1, 2}, {1, 3}, {4, 6}, {4, 7}, {5, 6}, {5, 7}, {3, 4}} {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestReadAssignment(t *testing.T) {
	input := "# vertex group\n0 7\n1 7\n\n3 2\n"
	assignment, err := ReadAssignment(strings.NewReader(input), 5)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 7, -1, 2, -1}, assignment)

	_, err = ReadAssignment(strings.NewReader("0\n"), 2)
	require.ErrorIs(t, err, ErrMalformedAssignment)
	_, err = ReadAssignment(strings.NewReader("0 x\n"), 2)
	require.ErrorIs(t, err, ErrMalformedAssignment)
	_, err = ReadAssignment(strings.NewReader("5 1\n"), 2)
	require.ErrorIs(t, err, ErrAssignmentSize)
}

func TestLoadAssignment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 0\n2 0\n"), 0o644))
	assignment, err := LoadAssignment(path, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 0, 0}, assignment)

	_, err = LoadAssignment(filepath.Join(t.TempDir(), "missing"), 3)
	require.Error(t, err)
}

func TestReplay(t *testing.T) {
	assignment := []int{0, 0, 1, 1, 2, 2, 3, 3}
	res, err := summary.Run(context.Background(), twoBicliques(t), NewReplay(assignment), quietConfig())
	require.NoError(t, err)

	assert.Equal(t, "replay", res.Strategy)
	assert.Equal(t, 1, res.Statistics.Iterations)
	assert.Equal(t, 4, res.Statistics.Merges)
	assert.Equal(t, 4, res.Encoding.NumSupernodes)
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4, 5}, {6, 7}}, res.Encoding.Members)
	assert.ElementsMatch(t, []summary.Superedge{{A: 0, B: 1}, {A: 1, B: 0}, {A: 2, B: 3}, {A: 3, B: 2}}, res.Encoding.P)
	assert.Equal(t, []summary.Edge{{U: 3, V: 4}, {U: 4, V: 3}}, res.Encoding.CPlus)
	assert.Empty(t, res.Encoding.CMinus)
}

func TestReplayRejectsWrongSize(t *testing.T) {
	_, err := summary.Run(context.Background(), twoBicliques(t), NewReplay([]int{0, 0}), quietConfig())
	require.ErrorIs(t, err, ErrAssignmentSize)
}

func TestCommunityThreshold(t *testing.T) {
	c := NewCommunity(quietLouvain(), 0.2)
	assert.InDelta(t, 0.5, c.Threshold(0), 1e-12)
	assert.InDelta(t, 1.0/3, c.Threshold(1), 1e-12)
	assert.InDelta(t, 0.2, c.Threshold(10), 1e-12)
}

func TestCommunityDivideSplitsLargeGroups(t *testing.T) {
	g := twoBicliques(t)
	s := summary.NewSession(g, false, 1)
	c := NewCommunity(quietLouvain(), 0)
	c.communities = []int{0, 0, 0, 0, 0, 1, 1, 2}
	c.MaxGroupSize = 2

	groups, err := c.Divide(s, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {5, 6}}, groups)
}

func TestCommunityMergesStructurallyEquivalentVertices(t *testing.T) {
	g := twoBicliques(t)
	c := NewCommunity(quietLouvain(), 0)
	cfg := quietConfig()
	cfg.Set("driver.max_iterations", 5)

	res, err := summary.Run(context.Background(), g, c, cfg)
	require.NoError(t, err)

	assert.Greater(t, res.Statistics.Merges, 0)
	assert.Less(t, res.Encoding.NumSupernodes, 8)
	assert.Equal(t, res.Encoding.NumArcs, len(summary.Reconstruct(res.Encoding)))
	assert.Greater(t, res.Evaluation.CompressionRatio, 0.0)
}

func TestCommunityMatchesStructuralPairing(t *testing.T) {
	g := twoBicliques(t)
	cfg := quietConfig()
	cfg.Set("driver.max_iterations", 5)

	replay, err := summary.Run(context.Background(), g, NewReplay([]int{0, 0, 1, 1, 2, 2, 3, 3}), cfg)
	require.NoError(t, err)
	community, err := summary.Run(context.Background(), g, NewCommunity(quietLouvain(), 0), cfg)
	require.NoError(t, err)

	assert.InDelta(t, 1-6.0/18, replay.Evaluation.CompressionRatio, 1e-12)
	assert.GreaterOrEqual(t, community.Evaluation.CompressionRatio+1e-12, replay.Evaluation.CompressionRatio)
	assert.Empty(t, community.Encoding.CMinus)
}

func TestCommunitySkipsPeersWithoutSharedNeighbours(t *testing.T) {
	// 0 <-> 1 with no other neighbours: the pair looks cheap to merge but
	// their weight vectors are disjoint.
	g := graph.NewGraph(2)
	require.NoError(t, g.AddEdge(0, 1))
	s := summary.NewSession(g, false, 1)
	c := NewCommunity(quietLouvain(), 0)

	merged, err := c.Merge(s, [][]int{{0, 1}}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, merged)
	assert.Equal(t, 2, s.Count())
}
