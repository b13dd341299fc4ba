package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
	"github.com/gilchrisn/graph-summarization-service/pkg/louvain"
	"github.com/gilchrisn/graph-summarization-service/pkg/strategy"
	"github.com/gilchrisn/graph-summarization-service/pkg/summary"
)

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrResultNotReady = errors.New("result not ready")
	ErrInvalidRequest = errors.New("invalid request")
)

// JobService runs summarization jobs in the background on a bounded pool.
type JobService struct {
	jobs            map[string]*Job
	results         map[string]*summary.Result
	cancels         map[string]context.CancelFunc
	workers         chan struct{}
	metrics         *Metrics
	summaryConfig   string
	mutex           sync.RWMutex
	jobTTL          time.Duration
	jobTimeout      time.Duration
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
	running         sync.WaitGroup
}

// NewJobService creates a new job service
func NewJobService(cfg JobConfig, summaryConfig string, metrics *Metrics) *JobService {
	service := &JobService{
		jobs:            make(map[string]*Job),
		results:         make(map[string]*summary.Result),
		cancels:         make(map[string]context.CancelFunc),
		workers:         make(chan struct{}, max(cfg.MaxWorkers, 1)),
		metrics:         metrics,
		summaryConfig:   summaryConfig,
		jobTTL:          cfg.ResultTTL,
		jobTimeout:      cfg.JobTimeout,
		cleanupInterval: cfg.CleanupInterval,
		stop:            make(chan struct{}),
	}

	if service.cleanupInterval > 0 {
		go service.cleanupLoop()
	}
	return service
}

// task is everything processJob needs, prepared at submit time.
type task struct {
	graph    *graph.Graph
	strategy summary.Strategy
	config   *summary.Config
}

// Submit validates req, creates a job and queues it.
func (s *JobService) Submit(req SummaryRequest) (Job, error) {
	t, err := s.prepare(req)
	if err != nil {
		return Job{}, err
	}

	now := time.Now()
	job := &Job{
		ID:          uuid.New().String(),
		Strategy:    req.Strategy,
		NumVertices: t.graph.NumVertices(),
		NumArcs:     t.graph.NumArcs(),
		Status:      JobStatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	timeout := s.jobTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	s.mutex.Lock()
	s.jobs[job.ID] = job
	s.cancels[job.ID] = cancel
	snapshot := *job
	s.mutex.Unlock()

	s.metrics.JobsSubmitted.Inc()
	log.Info().
		Str("job_id", job.ID).
		Str("strategy", string(job.Strategy)).
		Int("vertices", job.NumVertices).
		Int("arcs", job.NumArcs).
		Msg("Job submitted")

	s.running.Add(1)
	go s.processJob(ctx, job.ID, t)
	return snapshot, nil
}

// prepare builds the graph, strategy and config a request describes.
func (s *JobService) prepare(req SummaryRequest) (*task, error) {
	opts := graph.ReadOptions{
		Symmetric:   req.Undirected,
		Deduplicate: req.Deduplicate,
		NumVertices: req.NumVertices,
	}
	var g *graph.Graph
	var err error
	switch {
	case req.EdgeList != "" && len(req.Edges) > 0:
		return nil, fmt.Errorf("%w: give either edges or edgeList, not both", ErrInvalidRequest)
	case req.EdgeList != "":
		g, err = graph.ReadEdgeList(strings.NewReader(req.EdgeList), opts)
	default:
		g, err = graph.FromPairs(req.Edges, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	cfg := summary.NewConfig()
	if s.summaryConfig != "" {
		if err := cfg.LoadFromFile(s.summaryConfig); err != nil {
			return nil, fmt.Errorf("loading summary config: %w", err)
		}
	}
	cfg.Set("logging.enable_progress", false)
	for key, value := range req.Config {
		cfg.Set(key, value)
	}
	if _, err := summary.NewEncoder(cfg.EncodeAlgorithm(), false, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if cfg.DropErrorBound() < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, summary.ErrNegativeErrorBound)
	}

	var strat summary.Strategy
	switch req.Strategy {
	case StrategyCommunity, "":
		strat = strategy.NewCommunity(louvainConfig(), cfg.ThresholdFloor())
	case StrategyReplay:
		if len(req.Assignment) != g.NumVertices() {
			return nil, fmt.Errorf("%w: assignment has %d labels for %d vertices",
				ErrInvalidRequest, len(req.Assignment), g.NumVertices())
		}
		strat = strategy.NewReplay(req.Assignment)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidRequest, req.Strategy)
	}
	return &task{graph: g, strategy: strat, config: cfg}, nil
}

// louvainConfig keeps community detection quiet inside the daemon.
func louvainConfig() *louvain.Config {
	lc := louvain.NewConfig()
	lc.Set("logging.level", "warn")
	return lc
}

// Get retrieves a snapshot of a job by ID
func (s *JobService) Get(jobID string) (Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return *job, nil
}

// GetResult retrieves the full result of a completed job
func (s *JobService) GetResult(jobID string) (*summary.Result, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if _, exists := s.jobs[jobID]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	result, exists := s.results[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrResultNotReady, jobID)
	}
	return result, nil
}

// List returns snapshots of all jobs
func (s *JobService) List() []Job {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// Cancel stops a queued or running job
func (s *JobService) Cancel(jobID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if job.finished() {
		return nil
	}

	job.Status = JobStatusCancelled
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now
	if cancel, ok := s.cancels[jobID]; ok {
		cancel()
	}
	s.metrics.JobsFinished.WithLabelValues(string(JobStatusCancelled)).Inc()

	log.Info().
		Str("job_id", jobID).
		Msg("Job cancelled")
	return nil
}

// Wait blocks until every submitted job has finished processing.
func (s *JobService) Wait() {
	s.running.Wait()
}

// Close stops the cleanup loop, cancels outstanding jobs and waits for them.
func (s *JobService) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mutex.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mutex.Unlock()
	s.running.Wait()
}

// processJob processes a job in the background
func (s *JobService) processJob(ctx context.Context, jobID string, t *task) {
	defer s.running.Done()
	defer s.releaseCancel(jobID)

	// Acquire worker slot
	select {
	case s.workers <- struct{}{}:
	case <-ctx.Done():
		s.abandonJob(jobID, ctx.Err())
		return
	}
	defer func() { <-s.workers }()

	startTime := time.Now()
	if !s.markRunning(jobID, startTime) {
		return
	}
	s.metrics.JobsRunning.Inc()
	defer s.metrics.JobsRunning.Dec()

	log.Info().
		Str("job_id", jobID).
		Str("strategy", t.strategy.Name()).
		Msg("Job processing started")

	result, err := summary.Run(ctx, t.graph, t.strategy, t.config)
	if err != nil {
		s.failJob(jobID, err)
		return
	}
	s.completeJob(jobID, result, time.Since(startTime))
}

func (s *JobService) markRunning(jobID string, startTime time.Time) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status != JobStatusQueued {
		return false
	}
	job.Status = JobStatusRunning
	job.StartedAt = &startTime
	job.UpdatedAt = startTime
	return true
}

// abandonJob fails a job whose context ended before a worker picked it up.
// Cancelled jobs are already finished and are left alone.
func (s *JobService) abandonJob(jobID string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status != JobStatusQueued {
		return
	}

	job.Status = JobStatusFailed
	job.Error = fmt.Sprintf("waiting for a worker: %v", err)
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now
	s.metrics.JobsFinished.WithLabelValues(string(JobStatusFailed)).Inc()

	log.Warn().
		Str("job_id", jobID).
		Err(err).
		Msg("Job expired in queue")
}

func (s *JobService) releaseCancel(jobID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if cancel, ok := s.cancels[jobID]; ok {
		cancel()
		delete(s.cancels, jobID)
	}
}

// completeJob marks a job as completed with results
func (s *JobService) completeJob(jobID string, result *summary.Result, elapsed time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status != JobStatusRunning {
		return
	}

	job.Status = JobStatusCompleted
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now
	job.Result = &JobResult{
		Encoder:          result.Encoder,
		CompressionRatio: result.Evaluation.CompressionRatio,
		Supernodes:       result.Evaluation.VerticesAfter,
		Statistics:       result.Statistics,
	}
	s.results[jobID] = result

	s.metrics.JobsFinished.WithLabelValues(string(JobStatusCompleted)).Inc()
	s.metrics.JobDuration.Observe(elapsed.Seconds())
	s.metrics.CompressionRatio.Observe(result.Evaluation.CompressionRatio)

	log.Info().
		Str("job_id", jobID).
		Float64("compression", result.Evaluation.CompressionRatio).
		Int("supernodes", result.Evaluation.VerticesAfter).
		Dur("elapsed", elapsed).
		Msg("Job completed successfully")
}

// failJob marks a job as failed. A job cancelled meanwhile keeps its status.
func (s *JobService) failJob(jobID string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status != JobStatusRunning {
		return
	}

	job.Status = JobStatusFailed
	job.Error = err.Error()
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now
	s.metrics.JobsFinished.WithLabelValues(string(JobStatusFailed)).Inc()

	log.Error().
		Str("job_id", jobID).
		Err(err).
		Msg("Job failed")
}

// cleanupLoop periodically cleans up old jobs and results
func (s *JobService) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.stop:
			return
		}
	}
}

// cleanup removes finished jobs not updated since now - TTL
func (s *JobService) cleanup(now time.Time) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := now.Add(-s.jobTTL)
	cleaned := 0
	for jobID, job := range s.jobs {
		if job.finished() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, jobID)
			delete(s.results, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		log.Info().
			Int("cleaned_jobs", cleaned).
			Msg("Job cleanup completed")
	}
	return cleaned
}
