package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/orchestrator"
	"github.com/abhisek/voxtutor/internal/persona"
	"github.com/abhisek/voxtutor/internal/planner"
	"github.com/abhisek/voxtutor/internal/statestore"
)

type startRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	Persona   string `json:"persona,omitempty"`
}

// StartSession handles POST /api/v1/sessions.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		Error(w, http.StatusBadRequest, "user_id is required")
		return
	}
	st, err := s.orch.StartSession(r.Context(), orchestrator.StartInput{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Persona:   req.Persona,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, st)
}

// ListSessions handles GET /api/v1/sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	states, err := s.states.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, states)
}

// GetSession handles GET /api/v1/sessions/{sessionID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.states.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, st)
}

type turnRequest struct {
	UserID      string              `json:"user_id"`
	Topic       string              `json:"topic,omitempty"`
	Turns       []conversation.Turn `json:"turns"`
	DurationSec int                 `json:"duration_sec"`
}

// ProcessTurn handles POST /api/v1/sessions/{sessionID}/turns.
func (s *Server) ProcessTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if !decode(w, r, &req) {
		return
	}
	tr := conversation.Transcript{Turns: req.Turns}
	if err := tr.Normalize(); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.orch.ProcessTurn(r.Context(), orchestrator.TurnInput{
		SessionID:   chi.URLParam(r, "sessionID"),
		UserID:      req.UserID,
		Topic:       req.Topic,
		Turns:       tr.Turns,
		DurationSec: req.DurationSec,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

type planRequest struct {
	UserID    string                 `json:"user_id"`
	Turns     []conversation.Turn    `json:"turns"`
	Metrics   learner.SessionMetrics `json:"metrics"`
	TimeOfDay string                 `json:"time_of_day,omitempty"`
	Style     string                 `json:"style,omitempty"`
}

// PlanSession handles POST /api/v1/sessions/{sessionID}/plan.
func (s *Server) PlanSession(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !decode(w, r, &req) {
		return
	}
	style, err := persona.ParseStyle(req.Style)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var tod planner.TimeOfDay
	if req.TimeOfDay != "" {
		var ok bool
		if tod, ok = planner.ParseTimeOfDay(req.TimeOfDay); !ok {
			Error(w, http.StatusBadRequest, "time_of_day must be morning, afternoon, evening or night")
			return
		}
	}
	res, err := s.orch.PlanSession(r.Context(), orchestrator.PlanInput{
		SessionID: chi.URLParam(r, "sessionID"),
		UserID:    req.UserID,
		Turns:     req.Turns,
		Metrics:   req.Metrics,
		TimeOfDay: tod,
		Style:     style,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

type coordinateRequest struct {
	Turns   []conversation.Turn    `json:"turns"`
	Metrics learner.SessionMetrics `json:"metrics"`
	Profile *learner.Profile       `json:"profile,omitempty"`
}

// Coordinate handles POST /api/v1/sessions/{sessionID}/coordinate. It only
// decides; the stored state is not changed.
func (s *Server) Coordinate(w http.ResponseWriter, r *http.Request) {
	var req coordinateRequest
	if !decode(w, r, &req) {
		return
	}
	lookup := statestore.NewLookup(r.Context(), s.states)
	dec, err := s.coord.Coordinate(lookup, chi.URLParam(r, "sessionID"), req.Turns, req.Metrics, req.Profile)
	if lookup.Err != nil {
		err = lookup.Err
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, dec)
}

type transitionRequest struct {
	Target string `json:"target"`
	Style  string `json:"style,omitempty"`
	Turn   int    `json:"turn"`
}

// ExecuteTransition handles POST /api/v1/sessions/{sessionID}/transition.
func (s *Server) ExecuteTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if !decode(w, r, &req) {
		return
	}
	style, err := persona.ParseStyle(req.Style)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	lookup := statestore.NewLookup(r.Context(), s.states)
	tr, err := s.coord.ExecuteTransition(lookup, chi.URLParam(r, "sessionID"), req.Target, style, req.Turn, time.Now())
	if lookup.Err != nil {
		err = lookup.Err
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.states.Put(r.Context(), tr.State); err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, tr)
}

// FinishSession handles POST /api/v1/sessions/{sessionID}/finish.
func (s *Server) FinishSession(w http.ResponseWriter, r *http.Request) {
	var rec learner.SessionRecord
	if !decode(w, r, &rec) {
		return
	}
	rec.SessionID = chi.URLParam(r, "sessionID")
	if rec.UserID == "" {
		Error(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if err := s.orch.FinishSession(r.Context(), rec); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
