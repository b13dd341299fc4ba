package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
)

func vector(pairs map[int]int) WeightVector {
	w := NewHashCounter[int](len(pairs))
	for k, n := range pairs {
		w.Add(k, n)
	}
	return w
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b map[int]int
		want float64
	}{
		{"identical", map[int]int{1: 2, 4: 1}, map[int]int{1: 2, 4: 1}, 1},
		{"disjoint", map[int]int{1: 1}, map[int]int{2: 3}, 0},
		{"weighted overlap", map[int]int{1: 2, 2: 1}, map[int]int{1: 1, 3: 1}, 0.25},
		{"one empty", map[int]int{}, map[int]int{5: 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Jaccard(vector(tt.a), vector(tt.b))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)

			back, err := Jaccard(vector(tt.b), vector(tt.a))
			require.NoError(t, err)
			assert.InDelta(t, got, back, 1e-12)
		})
	}
}

func TestJaccardEmptyIsIndeterminate(t *testing.T) {
	_, err := Jaccard(vector(nil), vector(nil))
	require.ErrorIs(t, err, ErrIndeterminate)
}

func TestCombine(t *testing.T) {
	wa := vector(map[int]int{1: 2, 2: 1})
	wb := vector(map[int]int{2: 3, 7: 1})
	w := Combine(wa, wb)
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, 2, w.Get(1))
	assert.Equal(t, 4, w.Get(2))
	assert.Equal(t, 1, w.Get(7))
	assert.Equal(t, 1, wa.Get(2))
	assert.Equal(t, 7, Total[int](w))
}

func TestBuilderBatchMatchesOne(t *testing.T) {
	g := graph.NewGraph(6)
	for _, e := range [][2]int{{0, 2}, {0, 3}, {1, 2}, {1, 2}, {4, 5}, {5, 0}} {
		require.NoError(t, g.AddArc(e[0], e[1]))
	}
	p := NewPartition(6)
	_, err := p.Merge(0, 1)
	require.NoError(t, err)

	for _, workers := range []int{1, 4} {
		b, err := NewBuilder(g, p, workers)
		require.NoError(t, err)

		group := p.Supernodes()
		batch, err := b.BuildBatch(group)
		require.NoError(t, err)
		require.Len(t, batch, len(group))
		for i, r := range group {
			one, err := b.BuildOne(r)
			require.NoError(t, err)
			assert.Equal(t, one, batch[i])
		}

		w0, err := b.BuildOne(0)
		require.NoError(t, err)
		assert.Equal(t, 3, w0.Get(2), "parallel arcs are counted")
		assert.Equal(t, 1, w0.Get(3))
	}

	_, err = NewBuilder(g, NewPartition(5), 1)
	require.ErrorIs(t, err, ErrGraphMismatch)
}

func savingsFor(t *testing.T, n int, arcs [][2]int, a, b int) (float64, error) {
	t.Helper()
	g := graph.NewGraph(n)
	for _, e := range arcs {
		require.NoError(t, g.AddArc(e[0], e[1]))
	}
	s := NewSession(g, false, 1)
	wa, err := s.BuildOne(a)
	require.NoError(t, err)
	wb, err := s.BuildOne(b)
	require.NoError(t, err)
	return s.Savings(wa, wb, a, b)
}

func TestSavingsMonotonicity(t *testing.T) {
	identical, err := savingsFor(t, 4, [][2]int{{0, 2}, {0, 3}, {1, 2}, {1, 3}}, 0, 1)
	require.NoError(t, err)
	disjoint, err := savingsFor(t, 6, [][2]int{{0, 2}, {0, 3}, {1, 4}, {1, 5}}, 0, 1)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, identical, 1e-12)
	assert.InDelta(t, 0.0, disjoint, 1e-12)
	assert.Greater(t, identical, disjoint)
}

func TestSavingsSelfAndCrossTerms(t *testing.T) {
	// 0 <-> 1 plus a shared neighbour: merging folds the cross arcs into the
	// merged self block.
	got, err := savingsFor(t, 3, [][2]int{{0, 1}, {1, 0}, {0, 2}, {1, 2}}, 0, 1)
	require.NoError(t, err)
	// costA = 1 (0->1) + 1 (0->2); costB likewise; merged: 0->2,1->2 dense
	// block of 2 cells costs 1, self block 2 arcs of 1 cell costs 1+1-2 = 0.
	assert.InDelta(t, 1-1.0/4, got, 1e-12)
}

func TestSavingsIsolatedIsIndeterminate(t *testing.T) {
	_, err := savingsFor(t, 3, [][2]int{{2, 2}}, 0, 1)
	require.ErrorIs(t, err, ErrIndeterminate)
}

func TestSavingsInvalidSupernode(t *testing.T) {
	g := graph.NewGraph(3)
	s := NewSession(g, false, 1)
	_, err := s.Merge(0, 1)
	require.NoError(t, err)
	_, err = s.Savings(vector(nil), vector(nil), 0, 1)
	require.ErrorIs(t, err, ErrInvalidSupernode)
}

func TestSavingsRejectsSameSupernode(t *testing.T) {
	_, err := savingsFor(t, 3, [][2]int{{0, 1}, {0, 2}}, 0, 0)
	require.ErrorIs(t, err, ErrSelfMerge)
}
