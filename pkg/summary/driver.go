package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
)

// Result is the output of Run.
type Result struct {
	Strategy   string        `json:"strategy"`
	Encoder    string        `json:"encoder"`
	Encoding   *Encoding     `json:"encoding"`
	Evaluation Evaluation    `json:"evaluation"`
	Drop       *DropResult   `json:"drop,omitempty"`
	Interim    []InterimEval `json:"interim,omitempty"`
	Statistics Statistics    `json:"statistics"`
}

// InterimEval is an evaluation taken partway through the merge loop.
type InterimEval struct {
	Iteration  int           `json:"iteration" yaml:"iteration"`
	Evaluation Evaluation    `json:"evaluation" yaml:"evaluation"`
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Statistics records iteration counts and phase timings.
type Statistics struct {
	Iterations int           `json:"iterations" yaml:"iterations"`
	Merges     int           `json:"merges" yaml:"merges"`
	Initial    time.Duration `json:"initial" yaml:"initial"`
	Merge      time.Duration `json:"merge" yaml:"merge"`
	Encode     time.Duration `json:"encode" yaml:"encode"`
	Drop       time.Duration `json:"drop" yaml:"drop"`
	Total      time.Duration `json:"total" yaml:"total"`
}

// Run drives strategy over g for at most driver.max_iterations rounds, then
// encodes the final partition, evaluates it and optionally applies the drop
// pass. ctx is checked between iterations; encode and drop run to completion.
func Run(ctx context.Context, g graph.View, strategy Strategy, config *Config) (*Result, error) {
	if strategy == nil {
		return nil, ErrNilStrategy
	}
	if config == nil {
		config = NewConfig()
	}
	logger := config.CreateLogger()
	start := time.Now()

	encoder, err := NewEncoder(config.EncodeAlgorithm(), config.Symmetric(), config.Workers())
	if err != nil {
		return nil, err
	}

	s := NewSession(g, config.Symmetric(), config.Workers())
	result := &Result{Strategy: strategy.Name(), Encoder: encoder.Name()}

	logger.Info().
		Int("vertices", g.NumVertices()).
		Int("arcs", graph.NumArcs(g)).
		Str("strategy", strategy.Name()).
		Str("encoder", encoder.Name()).
		Msg("Starting summarization")

	phase := time.Now()
	if err := strategy.Initial(ctx, s); err != nil {
		return nil, fmt.Errorf("initial phase: %w", err)
	}
	result.Statistics.Initial = time.Since(phase)

	phase = time.Now()
	reportEvery := config.ReportEvery()
	for it := 0; it < config.MaxIterations(); it++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		groups, err := strategy.Divide(s, it)
		if err != nil {
			return nil, fmt.Errorf("iteration %d divide: %w", it, err)
		}
		if len(groups) == 0 {
			logger.Debug().Int("iteration", it).Msg("No candidate groups, stopping")
			break
		}
		merged, err := strategy.Merge(s, groups, it)
		if err != nil {
			return nil, fmt.Errorf("iteration %d merge: %w", it, err)
		}
		result.Statistics.Iterations++

		if config.EnableProgress() {
			logger.Info().
				Int("iteration", it).
				Int("groups", len(groups)).
				Int("merges", merged).
				Int("supernodes", s.Count()).
				Msg("Iteration complete")
		}

		if reportEvery > 0 && (it+1)%reportEvery == 0 {
			enc, err := encoder.Encode(g, s.partition)
			if err != nil {
				return nil, fmt.Errorf("iteration %d encode: %w", it, err)
			}
			eval := Evaluate(enc)
			result.Interim = append(result.Interim, InterimEval{
				Iteration:  it,
				Evaluation: eval,
				Elapsed:    time.Since(start),
			})
			logger.Info().
				Int("iteration", it).
				Float64("compression", eval.CompressionRatio).
				Msg("Interim evaluation")
		}
	}
	result.Statistics.Merge = time.Since(phase)
	result.Statistics.Merges = s.Merges()

	phase = time.Now()
	enc, err := encoder.Encode(g, s.partition)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	enc.Elapsed = time.Since(phase)
	result.Statistics.Encode = enc.Elapsed
	result.Encoding = enc
	result.Evaluation = Evaluate(enc)

	logger.Info().
		Dur("encode_time", enc.Elapsed).
		Int("supernodes", enc.NumSupernodes).
		Int("superedges", len(enc.P)).
		Int("c_plus", len(enc.CPlus)).
		Int("c_minus", len(enc.CMinus)).
		Float64("compression", result.Evaluation.CompressionRatio).
		Msg("Encoding complete")

	if config.DropEnabled() {
		phase = time.Now()
		dropped, err := Drop(g, enc, config.DropErrorBound())
		if err != nil {
			return nil, fmt.Errorf("drop: %w", err)
		}
		result.Statistics.Drop = time.Since(phase)
		result.Drop = dropped

		logger.Info().
			Float64("error_bound", dropped.ErrorBound).
			Int("dropped_superedges", dropped.DroppedSuperedges).
			Int("dropped_plus", dropped.DroppedPlus).
			Int("dropped_minus", dropped.DroppedMinus).
			Float64("compression", dropped.UndirectedCompressionRatio).
			Msg("Drop pass complete")
	}

	result.Statistics.Total = time.Since(start)
	return result, nil
}
