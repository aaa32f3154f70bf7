package planner

import "fmt"

// Weights holds the planner's tuning constants.
type Weights struct {
	// Topic scoring weights; they sum to 1.
	HistoryWeight    float64 `yaml:"history_weight"`
	TimeOfDayWeight  float64 `yaml:"time_of_day_weight"`
	EngagementWeight float64 `yaml:"engagement_weight"`
	PreferenceWeight float64 `yaml:"preference_weight"`

	// RecentWindow is how many of the latest sessions' topics are excluded.
	RecentWindow       int     `yaml:"recent_window"`
	FallbackConfidence float64 `yaml:"fallback_confidence"`

	LowEngagement  float64 `yaml:"low_engagement"`
	HighEngagement float64 `yaml:"high_engagement"`

	ShortSessionMinutes  int `yaml:"short_session_minutes"`
	NormalSessionMinutes int `yaml:"normal_session_minutes"`
	LongSessionMinutes   int `yaml:"long_session_minutes"`

	StruggleThreshold      float64 `yaml:"struggle_threshold"`
	ErrorCategoryThreshold int     `yaml:"error_category_threshold"`
	MaxStruggleAreas       int     `yaml:"max_struggle_areas"`
	FatigueSessionMinutes  float64 `yaml:"fatigue_session_minutes"`
	HighFatigue            float64 `yaml:"high_fatigue"`
}

// DefaultWeights returns the standard planner tuning.
func DefaultWeights() Weights {
	return Weights{
		HistoryWeight:    0.4,
		TimeOfDayWeight:  0.3,
		EngagementWeight: 0.2,
		PreferenceWeight: 0.1,

		RecentWindow:       5,
		FallbackConfidence: 0.6,

		LowEngagement:  40,
		HighEngagement: 70,

		ShortSessionMinutes:  10,
		NormalSessionMinutes: 15,
		LongSessionMinutes:   20,

		StruggleThreshold:      0.6,
		ErrorCategoryThreshold: 3,
		MaxStruggleAreas:       2,
		FatigueSessionMinutes:  45,
		HighFatigue:            0.7,
	}
}

// Validate checks the weights are usable.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"history_weight":     w.HistoryWeight,
		"time_of_day_weight": w.TimeOfDayWeight,
		"engagement_weight":  w.EngagementWeight,
		"preference_weight":  w.PreferenceWeight,
	} {
		if v < 0 {
			return fmt.Errorf("planner.%s must not be negative", name)
		}
	}
	if w.LowEngagement > w.HighEngagement {
		return fmt.Errorf("planner.low_engagement (%v) must not exceed high_engagement (%v)", w.LowEngagement, w.HighEngagement)
	}
	if w.RecentWindow < 0 {
		return fmt.Errorf("planner.recent_window must not be negative")
	}
	if w.FatigueSessionMinutes <= 0 {
		return fmt.Errorf("planner.fatigue_session_minutes must be positive")
	}
	return nil
}
