package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// statusRecorder remembers what a handler sent so middleware can report it.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w}
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// committed reports whether the status line has gone out.
func (rec *statusRecorder) committed() bool { return rec.status != 0 }

// LoggingMiddleware logs one line per request, at warn for 4xx and error
// for 5xx responses.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		level := zerolog.InfoLevel
		switch {
		case status >= 500:
			level = zerolog.ErrorLevel
		case status >= 400:
			level = zerolog.WarnLevel
		}

		event := log.WithLevel(level).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start))
		if jobID := mux.Vars(r)["jobId"]; jobID != "" {
			event = event.Str("job_id", jobID)
		}
		event.Msg("Request served")
	})
}

// RecoveryMiddleware turns a handler panic into a 500 unless the handler
// already started its response.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newStatusRecorder(w)
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			log.Error().
				Interface("panic", p).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("Handler panicked")
			if !rec.committed() {
				WriteErrorResponse(rec, http.StatusInternalServerError, "Internal server error", nil)
			}
		}()
		next.ServeHTTP(rec, r)
	})
}
