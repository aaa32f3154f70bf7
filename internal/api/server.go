// Package api exposes the tutor's decision operations as JSON over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/orchestrator"
	"github.com/abhisek/voxtutor/internal/persona"
	"github.com/abhisek/voxtutor/internal/planner"
	"github.com/abhisek/voxtutor/internal/statestore"
	"github.com/abhisek/voxtutor/internal/store"
)

// maxBodyBytes caps request bodies; transcripts are small.
const maxBodyBytes = 1 << 20

// Deps are the handler dependencies.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Analyzer     *engagement.Analyzer
	Planner      *planner.Planner
	Coordinator  *persona.Coordinator
	Profiles     store.ProfileRepo
	Sessions     store.SessionRepo
	Events       store.EventRepo
	States       statestore.Store
	Log          *zap.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	orch     *orchestrator.Orchestrator
	az       *engagement.Analyzer
	pl       *planner.Planner
	coord    *persona.Coordinator
	profiles store.ProfileRepo
	sessions store.SessionRepo
	events   store.EventRepo
	states   statestore.Store
	log      *zap.Logger
}

// NewServer creates the handlers. Analyzer, Planner and Coordinator default
// to the standard weights.
func NewServer(d Deps) *Server {
	s := &Server{
		orch:     d.Orchestrator,
		az:       d.Analyzer,
		pl:       d.Planner,
		coord:    d.Coordinator,
		profiles: d.Profiles,
		sessions: d.Sessions,
		events:   d.Events,
		states:   d.States,
		log:      d.Log,
	}
	if s.az == nil {
		s.az = engagement.NewAnalyzer(engagement.DefaultWeights())
	}
	if s.pl == nil {
		s.pl = planner.New(planner.DefaultWeights())
	}
	if s.coord == nil {
		s.coord = persona.NewCoordinator(persona.DefaultThresholds(), s.az)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Router returns the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/engagement/analyze", s.AnalyzeEngagement)
		r.Post("/engagement/patterns", s.DetectPatterns)
		r.Post("/engagement/interventions", s.GenerateInterventions)

		r.Post("/planner/topic", s.SelectTopic)
		r.Post("/planner/difficulty", s.AdjustDifficulty)
		r.Post("/trend", s.AnalyzeTrend)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.StartSession)
			r.Get("/", s.ListSessions)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.GetSession)
				r.Post("/turns", s.ProcessTurn)
				r.Post("/plan", s.PlanSession)
				r.Post("/coordinate", s.Coordinate)
				r.Post("/transition", s.ExecuteTransition)
				r.Post("/finish", s.FinishSession)
			})
		})

		r.Route("/profiles/{userID}", func(r chi.Router) {
			r.Get("/", s.GetProfile)
			r.Put("/", s.PutProfile)
			r.Get("/sessions", s.GetSessionHistory)
		})

		r.Get("/llm/events", s.ListLLMEvents)
		r.Get("/llm/events/{eventID}", s.GetLLMEvent)
	})
	return r
}

// NewHTTPServer wraps the router in an http.Server.
func (s *Server) NewHTTPServer(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
		)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		Error(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, persona.ErrUnknownSession),
		errors.Is(err, statestore.ErrNotFound),
		errors.Is(err, store.ErrProfileNotFound),
		errors.Is(err, store.ErrEventNotFound):
		status = http.StatusNotFound
	case errors.Is(err, persona.ErrUnknownPersona):
		status = http.StatusBadRequest
	case errors.Is(err, persona.ErrAlreadyActive):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	Error(w, status, err.Error())
}
