package api

import (
	"net/http"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/learner"
)

type analyzeRequest struct {
	Turns       []conversation.Turn `json:"turns"`
	Profile     *learner.Profile    `json:"profile,omitempty"`
	DurationSec int                 `json:"duration_sec"`
	Topic       string              `json:"topic,omitempty"`
}

// AnalyzeEngagement handles POST /api/v1/engagement/analyze.
func (s *Server) AnalyzeEngagement(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	tr := conversation.Transcript{Turns: req.Turns}
	if err := tr.Normalize(); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	JSON(w, http.StatusOK, s.az.Analyze(tr.Turns, req.Profile, req.DurationSec, req.Topic))
}

type patternsRequest struct {
	Turns []conversation.Turn `json:"turns"`
}

// DetectPatterns handles POST /api/v1/engagement/patterns.
func (s *Server) DetectPatterns(w http.ResponseWriter, r *http.Request) {
	var req patternsRequest
	if !decode(w, r, &req) {
		return
	}
	tr := conversation.Transcript{Turns: req.Turns}
	if err := tr.Normalize(); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	JSON(w, http.StatusOK, s.az.Weights.DetectPatterns(tr.Turns))
}

type interventionsRequest struct {
	Analysis engagement.Analysis `json:"analysis"`
	Profile  *learner.Profile    `json:"profile,omitempty"`
	Topic    string              `json:"topic,omitempty"`
}

// GenerateInterventions handles POST /api/v1/engagement/interventions.
func (s *Server) GenerateInterventions(w http.ResponseWriter, r *http.Request) {
	var req interventionsRequest
	if !decode(w, r, &req) {
		return
	}
	JSON(w, http.StatusOK, s.az.Interventions(req.Analysis, req.Analysis.Signals, req.Profile, req.Topic))
}
