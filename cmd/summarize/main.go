package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
	"github.com/gilchrisn/graph-summarization-service/pkg/louvain"
	"github.com/gilchrisn/graph-summarization-service/pkg/strategy"
	"github.com/gilchrisn/graph-summarization-service/pkg/summary"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("Summarization failed")
	}
}

type options struct {
	configFile  string
	assignment  string
	undirected  bool
	deduplicate bool
	numVertices int
	format      string
	encodingOut string
	droppedOut  string
	overrides   map[string]interface{}
}

func parseFlags(args []string, stderr io.Writer) (*options, string, error) {
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: summarize [flags] <edge_list>\n\n")
		fs.PrintDefaults()
	}

	opts := &options{overrides: map[string]interface{}{}}
	fs.StringVar(&opts.configFile, "config", "", "summary config file (yaml, json or toml)")
	fs.StringVar(&opts.assignment, "assignment", "", "vertex -> group file; replays the grouping instead of detecting communities")
	fs.BoolVar(&opts.undirected, "undirected", false, "store every line as two arcs")
	fs.BoolVar(&opts.deduplicate, "dedup", false, "drop parallel arcs")
	fs.IntVar(&opts.numVertices, "n", 0, "minimum vertex count")
	fs.StringVar(&opts.format, "format", summary.FormatText, "report format: text, json or yaml")
	fs.StringVar(&opts.encodingOut, "encoding-out", "", "write the encoding as JSON to this file")
	fs.StringVar(&opts.droppedOut, "dropped-out", "", "write the drop-pass encoding as JSON to this file")

	encoder := fs.String("encoder", "", "override encode.algorithm (sorted or pairwise)")
	symmetric := fs.Bool("symmetric", false, "encode with the undirected convention")
	iterations := fs.Int("iterations", 0, "override driver.max_iterations")
	reportEvery := fs.Int("report-every", 0, "override driver.report_every")
	errorBound := fs.Float64("drop", -1, "run the drop pass with this error bound")
	workers := fs.Int("workers", 0, "override performance.num_workers")
	level := fs.String("log-level", "", "override logging.level")

	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, "", flag.ErrHelp
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "encoder":
			opts.overrides["encode.algorithm"] = *encoder
		case "symmetric":
			opts.overrides["encode.symmetric"] = *symmetric
		case "iterations":
			opts.overrides["driver.max_iterations"] = *iterations
		case "report-every":
			opts.overrides["driver.report_every"] = *reportEvery
		case "drop":
			opts.overrides["drop.enabled"] = true
			opts.overrides["drop.error_bound"] = *errorBound
		case "workers":
			opts.overrides["performance.num_workers"] = *workers
		case "log-level":
			opts.overrides["logging.level"] = *level
		}
	})
	return opts, fs.Arg(0), nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, input, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg := summary.NewConfig()
	if opts.configFile != "" {
		if err := cfg.LoadFromFile(opts.configFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	for key, value := range opts.overrides {
		cfg.Set(key, value)
	}

	g, err := graph.LoadEdgeList(input, graph.ReadOptions{
		Symmetric:   opts.undirected,
		Deduplicate: opts.deduplicate,
		NumVertices: opts.numVertices,
	})
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	log.Info().
		Str("input", input).
		Int("vertices", g.NumVertices()).
		Int("arcs", g.NumArcs()).
		Bool("symmetric_input", graph.IsSymmetric(g)).
		Msg("Graph loaded")

	var strat summary.Strategy
	if opts.assignment != "" {
		assignment, err := strategy.LoadAssignment(opts.assignment, g.NumVertices())
		if err != nil {
			return err
		}
		strat = strategy.NewReplay(assignment)
	} else {
		lc := louvain.NewConfig()
		lc.Set("logging.level", cfg.LogLevel())
		strat = strategy.NewCommunity(lc, cfg.ThresholdFloor())
	}

	result, err := summary.Run(ctx, g, strat, cfg)
	if err != nil {
		return err
	}

	if opts.encodingOut != "" {
		if err := writeEncoding(opts.encodingOut, result.Encoding); err != nil {
			return err
		}
	}
	if opts.droppedOut != "" && result.Drop != nil {
		if err := writeEncoding(opts.droppedOut, result.Drop.Encoding); err != nil {
			return err
		}
	}
	return summary.WriteReport(stdout, opts.format, result.Report())
}

func writeEncoding(path string, enc *summary.Encoding) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := summary.WriteEncoding(file, enc); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("size", enc.Size()).Msg("Encoding written")
	return nil
}
