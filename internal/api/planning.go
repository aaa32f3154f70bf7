package api

import (
	"net/http"
	"time"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/planner"
	"github.com/abhisek/voxtutor/internal/trend"
)

type topicRequest struct {
	Profile    *learner.Profile        `json:"profile,omitempty"`
	History    []learner.SessionRecord `json:"history"`
	Engagement *float64                `json:"engagement,omitempty"`
	TimeOfDay  string                  `json:"time_of_day,omitempty"`
}

// SelectTopic handles POST /api/v1/planner/topic.
func (s *Server) SelectTopic(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if !decode(w, r, &req) {
		return
	}
	tod := planner.TimeOfDayAt(time.Now())
	if req.TimeOfDay != "" {
		var ok bool
		if tod, ok = planner.ParseTimeOfDay(req.TimeOfDay); !ok {
			Error(w, http.StatusBadRequest, "time_of_day must be morning, afternoon, evening or night")
			return
		}
	}
	eng := s.az.Weights.BaselineScore
	if req.Engagement != nil {
		eng = *req.Engagement
	}
	JSON(w, http.StatusOK, s.pl.SelectTopic(req.Profile, req.History, eng, tod))
}

type difficultyRequest struct {
	Profile *learner.Profile        `json:"profile,omitempty"`
	Turns   []conversation.Turn     `json:"turns"`
	Metrics learner.SessionMetrics  `json:"metrics"`
	History []learner.SessionRecord `json:"history"`
	Now     time.Time               `json:"now,omitempty"`
}

// AdjustDifficulty handles POST /api/v1/planner/difficulty.
func (s *Server) AdjustDifficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyRequest
	if !decode(w, r, &req) {
		return
	}
	JSON(w, http.StatusOK, s.pl.AdjustDifficulty(req.Profile, req.Turns, planner.Performance{
		Current: req.Metrics,
		History: req.History,
		Now:     req.Now,
	}))
}

type trendRequest struct {
	History   []learner.SessionRecord `json:"history"`
	Timeframe string                  `json:"timeframe,omitempty"`
	Now       time.Time               `json:"now,omitempty"`
}

// AnalyzeTrend handles POST /api/v1/trend.
func (s *Server) AnalyzeTrend(w http.ResponseWriter, r *http.Request) {
	var req trendRequest
	if !decode(w, r, &req) {
		return
	}
	tf, err := trend.ParseTimeframe(req.Timeframe)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	JSON(w, http.StatusOK, trend.Analyze(req.History, tf, now))
}
