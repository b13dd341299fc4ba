package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	jobs   *JobService
	server *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	jobs := NewJobService(JobConfig{
		MaxWorkers: 2,
		JobTimeout: time.Minute,
		ResultTTL:  time.Hour,
	}, "", NewMetrics(reg))
	server := httptest.NewServer(NewRouter(NewHandlers(jobs, 1<<20), reg, []string{"*"}))
	t.Cleanup(func() {
		server.Close()
		jobs.Close()
	})
	return &testServer{jobs: jobs, server: server}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func quiet() map[string]interface{} {
	return map[string]interface{}{"logging.level": "disabled"}
}

func bipartiteRequest() SummaryRequest {
	return SummaryRequest{
		Edges:      [][2]int{{0, 2}, {0, 3}, {1, 2}, {1, 3}},
		Strategy:   StrategyReplay,
		Assignment: []int{0, 0, 1, 1},
		Config:     quiet(),
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	status, env := ts.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestSubmitRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body interface{}
	}{
		{"malformed json", "{"},
		{"unknown strategy", SummaryRequest{Edges: [][2]int{{0, 1}}, Strategy: "magic"}},
		{"negative vertex", SummaryRequest{Edges: [][2]int{{0, -1}}}},
		{"both inputs", SummaryRequest{Edges: [][2]int{{0, 1}}, EdgeList: "0 1\n"}},
		{"short assignment", SummaryRequest{Edges: [][2]int{{0, 1}}, Strategy: StrategyReplay, Assignment: []int{0}}},
		{"unknown encoder", SummaryRequest{Edges: [][2]int{{0, 1}}, Config: map[string]interface{}{"encode.algorithm": "zip"}}},
		{"negative bound", SummaryRequest{Edges: [][2]int{{0, 1}}, Config: map[string]interface{}{"drop.error_bound": -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := ts.do(t, http.MethodPost, "/api/v1/summaries", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestSummaryLifecycle(t *testing.T) {
	ts := newTestServer(t)

	status, env := ts.do(t, http.MethodPost, "/api/v1/summaries", bipartiteRequest())
	require.Equal(t, http.StatusAccepted, status, env.Error)
	var job Job
	require.NoError(t, json.Unmarshal(env.Data, &job))
	require.NotEmpty(t, job.ID)
	assert.Equal(t, 4, job.NumVertices)
	assert.Equal(t, 4, job.NumArcs)

	ts.jobs.Wait()

	status, env = ts.do(t, http.MethodGet, "/api/v1/summaries/"+job.ID, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &job))
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.Result)
	assert.InDelta(t, 0.75, job.Result.CompressionRatio, 1e-12)
	assert.Equal(t, 2, job.Result.Supernodes)

	status, env = ts.do(t, http.MethodGet, "/api/v1/summaries/"+job.ID+"/evaluation", nil)
	require.Equal(t, http.StatusOK, status)
	var evaluation struct {
		Lines []string `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &evaluation))
	assert.Equal(t, "@Compression: 0.75000", evaluation.Lines[0])

	status, env = ts.do(t, http.MethodGet, "/api/v1/summaries/"+job.ID+"/encoding", nil)
	require.Equal(t, http.StatusOK, status)
	var encoding struct {
		Members [][]int `json:"members"`
		P       []struct {
			A int `json:"a"`
			B int `json:"b"`
		} `json:"p"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &encoding))
	assert.Equal(t, [][]int{{0, 1}, {2, 3}}, encoding.Members)
	require.Len(t, encoding.P, 1)

	status, _ = ts.do(t, http.MethodGet, "/api/v1/summaries/"+job.ID+"/encoding?dropped=true", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = ts.do(t, http.MethodPost, "/api/v1/summaries/"+job.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &job))
	assert.Equal(t, JobStatusCompleted, job.Status, "finished jobs are not cancelled")

	status, env = ts.do(t, http.MethodGet, "/api/v1/summaries", nil)
	require.Equal(t, http.StatusOK, status)
	var jobs []Job
	require.NoError(t, json.Unmarshal(env.Data, &jobs))
	assert.Len(t, jobs, 1)
}

func TestSubmitEdgeListWithDrop(t *testing.T) {
	ts := newTestServer(t)
	req := SummaryRequest{
		EdgeList:   "# pair\n0 1\n",
		Undirected: true,
		Config: map[string]interface{}{
			"logging.level":    "disabled",
			"drop.enabled":     true,
			"drop.error_bound": 1.0,
		},
	}
	status, env := ts.do(t, http.MethodPost, "/api/v1/summaries", req)
	require.Equal(t, http.StatusAccepted, status, env.Error)
	var job Job
	require.NoError(t, json.Unmarshal(env.Data, &job))
	assert.Equal(t, StrategyType(""), job.Strategy)

	ts.jobs.Wait()
	status, env = ts.do(t, http.MethodGet, "/api/v1/summaries/"+job.ID+"/encoding?dropped=true", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
}

func TestUnknownJob(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/v1/summaries/nope", "/api/v1/summaries/nope/evaluation"} {
		status, env := ts.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.False(t, env.Success)
	}
	status, _ := ts.do(t, http.MethodDelete, "/api/v1/summaries/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMetricsAndCORS(t *testing.T) {
	ts := newTestServer(t)
	status, _ := ts.do(t, http.MethodPost, "/api/v1/summaries", bipartiteRequest())
	require.Equal(t, http.StatusAccepted, status)
	ts.jobs.Wait()

	resp, err := http.Get(ts.server.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "summaryd_jobs_submitted_total 1")
	assert.Contains(t, string(body), `summaryd_jobs_finished_total{status="completed"} 1`)

	req, err := http.NewRequest(http.MethodOptions, ts.server.URL+"/api/v1/summaries", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCancelQueuedJob(t *testing.T) {
	reg := prometheus.NewRegistry()
	jobs := NewJobService(JobConfig{MaxWorkers: 1, ResultTTL: time.Hour}, "", NewMetrics(reg))
	defer jobs.Close()

	// hold the only worker so the job stays queued
	jobs.workers <- struct{}{}
	job, err := jobs.Submit(bipartiteRequest())
	require.NoError(t, err)
	require.NoError(t, jobs.Cancel(job.ID))
	<-jobs.workers
	jobs.Wait()

	got, err := jobs.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCancelled, got.Status)
	_, err = jobs.GetResult(job.ID)
	require.ErrorIs(t, err, ErrResultNotReady)
}

func TestQueuedJobTimesOut(t *testing.T) {
	reg := prometheus.NewRegistry()
	jobs := NewJobService(JobConfig{MaxWorkers: 1, JobTimeout: 20 * time.Millisecond, ResultTTL: time.Hour}, "", NewMetrics(reg))
	defer jobs.Close()

	jobs.workers <- struct{}{}
	defer func() { <-jobs.workers }()
	job, err := jobs.Submit(bipartiteRequest())
	require.NoError(t, err)
	jobs.Wait()

	got, err := jobs.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, got.Status)
	assert.Contains(t, got.Error, "deadline exceeded")
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(jobs.metrics.JobsFinished.WithLabelValues(string(JobStatusFailed))))

	assert.Equal(t, 1, jobs.cleanup(time.Now().Add(2*time.Hour)))
}

func TestCleanupRemovesExpiredJobs(t *testing.T) {
	reg := prometheus.NewRegistry()
	jobs := NewJobService(JobConfig{MaxWorkers: 1, ResultTTL: time.Hour}, "", NewMetrics(reg))
	defer jobs.Close()

	job, err := jobs.Submit(bipartiteRequest())
	require.NoError(t, err)
	jobs.Wait()

	assert.Equal(t, 0, jobs.cleanup(time.Now()))
	assert.Equal(t, 1, jobs.cleanup(time.Now().Add(2*time.Hour)))
	_, err = jobs.Get(job.ID)
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SUMMARYD_SERVER_ADDRESS", ":9090")
	t.Setenv("SUMMARYD_JOBS_MAX_WORKERS", "0")
	t.Setenv("SUMMARYD_JOBS_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 1, cfg.Jobs.MaxWorkers)
	assert.Equal(t, 30*time.Minute, cfg.Jobs.ResultTTL)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{"panic before write", func(w http.ResponseWriter, r *http.Request) { panic("boom") }, http.StatusInternalServerError},
		{"panic after write", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			panic("boom")
		}, http.StatusAccepted},
		{"no panic", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) }, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := LoggingMiddleware(RecoveryMiddleware(tt.handler))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestStatusRecorder(t *testing.T) {
	inner := newStatusRecorder(httptest.NewRecorder())
	assert.Same(t, inner, newStatusRecorder(inner))
	assert.False(t, inner.committed())

	_, err := inner.Write([]byte("abc"))
	require.NoError(t, err)
	inner.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, inner.status)
	assert.Equal(t, 3, inner.bytes)
}
