package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/graph-summarization-service/pkg/summary"
)

// Handlers contains HTTP request handlers
type Handlers struct {
	jobService   *JobService
	maxBodyBytes int64
}

// NewHandlers creates new API handlers
func NewHandlers(jobService *JobService, maxBodyBytes int64) *Handlers {
	return &Handlers{jobService: jobService, maxBodyBytes: maxBodyBytes}
}

// SubmitSummary queues a summarization job
func (h *Handlers) SubmitSummary(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	job, err := h.jobService.Submit(req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		log.Warn().Err(err).Msg("Summary submission rejected")
		WriteErrorResponse(w, status, "Failed to submit summary job", err)
		return
	}

	writeJSONResponse(w, http.StatusAccepted, APIResponse{
		Success: true,
		Message: "Summary job queued",
		Data:    job,
	})
}

// ListSummaries returns every known job
func (h *Handlers) ListSummaries(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, "Jobs retrieved", h.jobService.List())
}

// GetSummary returns a job's status
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	job, err := h.jobService.Get(jobID)
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "Job not found", err)
		return
	}
	WriteSuccessResponse(w, "Job retrieved", job)
}

// GetEvaluation returns the printable report of a completed job
func (h *Handlers) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}
	rep := result.Report()
	WriteSuccessResponse(w, "Evaluation retrieved", map[string]interface{}{
		"report": rep,
		"lines":  rep.Evaluation.Lines(),
	})
}

// GetEncoding returns the encoded artifact of a completed job. With
// ?dropped=true the pruned encoding of the drop pass is returned instead.
func (h *Handlers) GetEncoding(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}
	enc := result.Encoding
	if r.URL.Query().Get("dropped") == "true" {
		if result.Drop == nil {
			WriteErrorResponse(w, http.StatusNotFound, "Job ran without a drop pass", nil)
			return
		}
		enc = result.Drop.Encoding
	}
	WriteSuccessResponse(w, "Encoding retrieved", enc)
}

// CancelSummary cancels a queued or running job
func (h *Handlers) CancelSummary(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	if err := h.jobService.Cancel(jobID); err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "Job not found", err)
		return
	}
	job, err := h.jobService.Get(jobID)
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "Job not found", err)
		return
	}
	WriteSuccessResponse(w, "Job cancelled", job)
}

// HealthCheck reports liveness
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, "Service is healthy", map[string]interface{}{
		"status": "ok",
		"jobs":   len(h.jobService.List()),
	})
}

func (h *Handlers) result(w http.ResponseWriter, r *http.Request) (*summary.Result, bool) {
	jobID := mux.Vars(r)["jobId"]
	result, err := h.jobService.GetResult(jobID)
	switch {
	case errors.Is(err, ErrJobNotFound):
		WriteErrorResponse(w, http.StatusNotFound, "Job not found", err)
		return nil, false
	case errors.Is(err, ErrResultNotReady):
		WriteErrorResponse(w, http.StatusConflict, "Job has not completed", err)
		return nil, false
	case err != nil:
		WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load result", err)
		return nil, false
	}
	return result, true
}
