package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
)

// pairStrategy merges one fixed pair per iteration.
type pairStrategy struct {
	pairs    [][2]int
	initials int
}

func (s *pairStrategy) Name() string { return "pairs" }

func (s *pairStrategy) Initial(context.Context, *Session) error {
	s.initials++
	return nil
}

func (s *pairStrategy) Divide(_ *Session, iteration int) ([][]int, error) {
	if iteration >= len(s.pairs) {
		return nil, nil
	}
	return [][]int{s.pairs[iteration][:]}, nil
}

func (s *pairStrategy) Merge(session *Session, groups [][]int, _ int) (int, error) {
	merged := 0
	for _, group := range groups {
		if _, err := session.Merge(group[0], group[1]); err != nil {
			return merged, err
		}
		merged++
	}
	return merged, nil
}

func quietConfig() *Config {
	c := NewConfig()
	c.Set("logging.level", "disabled")
	return c
}

func bipartite(t *testing.T) *graph.Graph {
	g := graph.NewGraph(4)
	for _, e := range [][2]int{{0, 2}, {0, 3}, {1, 2}, {1, 3}} {
		require.NoError(t, g.AddArc(e[0], e[1]))
	}
	return g
}

func TestRun(t *testing.T) {
	for _, algorithm := range []string{EncoderSorted, EncoderPairwise} {
		t.Run(algorithm, func(t *testing.T) {
			c := quietConfig()
			c.Set("encode.algorithm", algorithm)
			c.Set("driver.report_every", 1)
			strategy := &pairStrategy{pairs: [][2]int{{0, 1}, {2, 3}}}

			res, err := Run(context.Background(), bipartite(t), strategy, c)
			require.NoError(t, err)

			assert.Equal(t, 1, strategy.initials)
			assert.Equal(t, "pairs", res.Strategy)
			assert.Equal(t, algorithm, res.Encoder)
			assert.Equal(t, 2, res.Statistics.Iterations)
			assert.Equal(t, 2, res.Statistics.Merges)
			assert.Equal(t, []Superedge{{0, 1}}, res.Encoding.P)
			assert.InDelta(t, 0.75, res.Evaluation.CompressionRatio, 1e-12)
			assert.Nil(t, res.Drop)

			require.Len(t, res.Interim, 2)
			assert.Equal(t, 0, res.Interim[0].Iteration)
			assert.Equal(t, 3, res.Interim[0].Evaluation.VerticesAfter)
			assert.Equal(t, 2, res.Interim[1].Evaluation.VerticesAfter)
		})
	}
}

func TestRunWithDrop(t *testing.T) {
	g := graph.NewGraph(2)
	require.NoError(t, g.AddEdge(0, 1))
	c := quietConfig()
	c.Set("drop.enabled", true)
	c.Set("drop.error_bound", 1.0)

	res, err := Run(context.Background(), g, &pairStrategy{}, c)
	require.NoError(t, err)
	require.NotNil(t, res.Drop)
	assert.Equal(t, 0, res.Statistics.Iterations)
	assert.Equal(t, 2, res.Evaluation.EdgesAfter)
	assert.LessOrEqual(t, res.Drop.Encoding.Size(), res.Encoding.Size())
}

func TestRunErrors(t *testing.T) {
	_, err := Run(context.Background(), bipartite(t), nil, quietConfig())
	require.ErrorIs(t, err, ErrNilStrategy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, bipartite(t), &pairStrategy{pairs: [][2]int{{0, 1}}}, quietConfig())
	require.ErrorIs(t, err, context.Canceled)

	_, err = Run(context.Background(), bipartite(t), &pairStrategy{pairs: [][2]int{{1, 1}}}, quietConfig())
	require.ErrorIs(t, err, ErrSelfMerge)

	c := quietConfig()
	c.Set("encode.algorithm", "bogus")
	_, err = Run(context.Background(), bipartite(t), &pairStrategy{}, c)
	require.ErrorIs(t, err, ErrUnknownEncoder)

	c = quietConfig()
	c.Set("drop.enabled", true)
	c.Set("drop.error_bound", -1.0)
	_, err = Run(context.Background(), bipartite(t), &pairStrategy{}, c)
	require.ErrorIs(t, err, ErrNegativeErrorBound)
}

func TestWriteReport(t *testing.T) {
	c := quietConfig()
	c.Set("drop.enabled", true)
	res, err := Run(context.Background(), bipartite(t), &pairStrategy{pairs: [][2]int{{0, 1}, {2, 3}}}, c)
	require.NoError(t, err)
	rep := res.Report()

	var text bytes.Buffer
	require.NoError(t, WriteReport(&text, FormatText, rep))
	assert.Contains(t, text.String(), "@Compression: 0.75000\n")
	assert.Contains(t, text.String(), "(P:1, C+:0, C-:0)")
	assert.Contains(t, text.String(), "@Drop(0)")

	var js bytes.Buffer
	require.NoError(t, WriteReport(&js, FormatJSON, rep))
	var decoded struct {
		Strategy   string     `json:"strategy"`
		Evaluation Evaluation `json:"evaluation"`
	}
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "pairs", decoded.Strategy)
	assert.Equal(t, 2, decoded.Evaluation.VerticesAfter)

	var ym bytes.Buffer
	require.NoError(t, WriteReport(&ym, FormatYAML, rep))
	var node map[string]any
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &node))
	assert.Equal(t, "sorted", node["encoder"])

	require.ErrorIs(t, WriteReport(&text, "xml", rep), ErrUnknownFormat)
}
