package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/store"
)

// GetProfile handles GET /api/v1/profiles/{userID}.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.GetUserProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

// PutProfile handles PUT /api/v1/profiles/{userID}.
func (s *Server) PutProfile(w http.ResponseWriter, r *http.Request) {
	var p learner.Profile
	if !decode(w, r, &p) {
		return
	}
	p.UserID = chi.URLParam(r, "userID")
	if p.CurrentLevel != "" && !p.CurrentLevel.Valid() {
		Error(w, http.StatusBadRequest, "unknown current_level "+string(p.CurrentLevel))
		return
	}
	if err := s.profiles.SaveUserProfile(r.Context(), p); err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

// GetSessionHistory handles GET /api/v1/profiles/{userID}/sessions.
func (s *Server) GetSessionHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := intQuery(w, r, "limit")
	if !ok {
		return
	}
	history, err := s.sessions.GetSessionHistory(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if history == nil {
		history = []learner.SessionRecord{}
	}
	JSON(w, http.StatusOK, history)
}

// ListLLMEvents handles GET /api/v1/llm/events.
func (s *Server) ListLLMEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := intQuery(w, r, "limit")
	if !ok {
		return
	}
	if limit == 0 {
		limit = 50
	}
	events, err := s.events.QueryLLMEvents(r.Context(), store.QueryOpts{
		Limit:      limit,
		Purpose:    r.URL.Query().Get("purpose"),
		FailedOnly: r.URL.Query().Get("failed") == "true",
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if events == nil {
		events = []store.LLMEvent{}
	}
	JSON(w, http.StatusOK, events)
}

// GetLLMEvent handles GET /api/v1/llm/events/{eventID}.
func (s *Server) GetLLMEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "event id must be an integer")
		return
	}
	ev, err := s.events.GetLLMEvent(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, ev)
}

func intQuery(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		Error(w, http.StatusBadRequest, key+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
