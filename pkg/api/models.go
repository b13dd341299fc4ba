package api

import (
	"time"

	"github.com/gilchrisn/graph-summarization-service/pkg/summary"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type StrategyType string

const (
	StrategyCommunity StrategyType = "community"
	StrategyReplay    StrategyType = "replay"
)

// SummaryRequest submits a graph for summarization. The graph is given
// either as Edges or as an EdgeList in the text edge-list format.
type SummaryRequest struct {
	NumVertices int          `json:"numVertices,omitempty"`
	Edges       [][2]int     `json:"edges,omitempty"`
	EdgeList    string       `json:"edgeList,omitempty"`
	Undirected  bool         `json:"undirected,omitempty"`
	Deduplicate bool         `json:"deduplicate,omitempty"`
	Strategy    StrategyType `json:"strategy,omitempty"`
	Assignment  []int        `json:"assignment,omitempty"`

	// Config overrides summary settings by key, e.g. "encode.algorithm".
	Config map[string]interface{} `json:"config,omitempty"`
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job represents a summarization job
type Job struct {
	ID          string       `json:"id"`
	Strategy    StrategyType `json:"strategy"`
	NumVertices int          `json:"numVertices"`
	NumArcs     int          `json:"numArcs"`
	Status      JobStatus    `json:"status"`
	Result      *JobResult   `json:"result,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	StartedAt   *time.Time   `json:"startedAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

type JobResult struct {
	Encoder          string             `json:"encoder"`
	CompressionRatio float64            `json:"compressionRatio"`
	Supernodes       int                `json:"supernodes"`
	Statistics       summary.Statistics `json:"statistics"`
}

func (j *Job) finished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed || j.Status == JobStatusCancelled
}
