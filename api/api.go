// Package api is the HTTP transport for the schedule search engine. It
// owns request parsing and schema validation; the core only ever sees
// already-typed data.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "interview-scheduler/errors"
	"interview-scheduler/metrics"
	"interview-scheduler/scheduler"
)

// maxRequestBody caps /schedule payloads at 4 MiB.
const maxRequestBody = 4 << 20

// Server wires the schedule engine to HTTP handlers.
type Server struct {
	engine   *scheduler.Engine
	validate *validator.Validate
	log      zerolog.Logger
}

// NewServer builds the transport around an engine.
func NewServer(engine *scheduler.Engine, log zerolog.Logger) *Server {
	return &Server{
		engine:   engine,
		validate: validator.New(),
		log:      log,
	}
}

// Router returns the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/schedule", s.handleSchedule)
	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Interview Scheduling API is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	var dto scheduleRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dto); err != nil {
		rejectRequest(w, "malformed JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(&dto); err != nil {
		rejectRequest(w, err.Error())
		return
	}

	req, err := dto.toModel()
	if err != nil {
		rejectRequest(w, err.Error())
		return
	}

	res, err := s.engine.Schedule(r.Context(), req)
	if err != nil {
		if apperrors.IsBadRequest(err) {
			rejectRequest(w, err.Error())
			return
		}
		log.Error().Err(err).Msg("schedule request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, buildResponse(res))
}

// requestLogger attaches a request-scoped logger carrying a request id
// and logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		log := s.log.With().Str("request_id", reqID).Logger()
		ctx := log.WithContext(r.Context())
		w.Header().Set("X-Request-Id", reqID)

		started := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r.WithContext(ctx))

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("elapsed", time.Since(started)).
			Msg("request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// rejectRequest answers 400 and records the rejection under the ERROR
// request status.
func rejectRequest(w http.ResponseWriter, detail string) {
	metrics.RequestsTotal.WithLabelValues("ERROR").Inc()
	writeError(w, http.StatusBadRequest, detail)
}
