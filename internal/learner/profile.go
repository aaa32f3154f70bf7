package learner

import (
	"time"
)

// Goal is a learning goal a learner has stated.
type Goal string

const (
	GoalGrammar       Goal = "grammar"
	GoalFluency       Goal = "fluency"
	GoalVocabulary    Goal = "vocabulary"
	GoalConfidence    Goal = "confidence"
	GoalConversation  Goal = "conversation"
	GoalPronunciation Goal = "pronunciation"
)

// Profile is the learner's profile as supplied by the profile store.
// The decision packages treat it as read-only input.
type Profile struct {
	UserID          string          `json:"user_id"`
	CurrentLevel    Level           `json:"current_level"`
	LearningGoals   []Goal          `json:"learning_goals"`
	PreferredTopics []string        `json:"preferred_topics"`
	Progress        ProgressMetrics `json:"progress"`
}

// ProgressMetrics tracks long-term progress. Ratios are in [0,1]; counts are
// non-negative. Updated externally after each session.
type ProgressMetrics struct {
	GrammarProgress   float64 `json:"grammar_progress"`
	FluencyProgress   float64 `json:"fluency_progress"`
	VocabularyGrowth  float64 `json:"vocabulary_growth"`
	ConfidenceLevel   float64 `json:"confidence_level"`
	SessionsCompleted int     `json:"sessions_completed"`
	StreakDays        int     `json:"streak_days"`
}

// DefaultProfile returns the profile used when the store has none for a user.
func DefaultProfile(userID string) Profile {
	return Profile{
		UserID:       userID,
		CurrentLevel: LevelBeginner,
		Progress: ProgressMetrics{
			ConfidenceLevel: 0.5,
		},
	}
}

// Level returns the profile's level, defaulting to beginner when unset or
// unknown. Safe on a nil profile.
func (p *Profile) Level() Level {
	if p == nil || !p.CurrentLevel.Valid() {
		return LevelBeginner
	}
	return p.CurrentLevel
}

// HasGoal reports whether the learner stated the goal. Safe on a nil profile.
func (p *Profile) HasGoal(g Goal) bool {
	if p == nil {
		return false
	}
	for _, lg := range p.LearningGoals {
		if lg == g {
			return true
		}
	}
	return false
}

// PreferenceRank returns the index of topic in the preferred topics list, or
// -1 if it is not preferred. Safe on a nil profile.
func (p *Profile) PreferenceRank(topic string) int {
	if p == nil {
		return -1
	}
	for i, t := range p.PreferredTopics {
		if t == topic {
			return i
		}
	}
	return -1
}

// SessionMetrics holds per-session scalars supplied fresh for each planning
// call. Accuracy and fluency are in [0,1].
type SessionMetrics struct {
	DurationSec       int            `json:"duration_sec"`
	WordsSpoken       int            `json:"words_spoken"`
	GrammarAccuracy   float64        `json:"grammar_accuracy"`
	FluencyScore      float64        `json:"fluency_score"`
	ErrorsCount       int            `json:"errors_count"`
	ImprovementsShown int            `json:"improvements_shown"`
	ErrorCategories   map[string]int `json:"error_categories,omitempty"`
}

// PerformanceScore returns the session's scalar performance on a 0–100 scale:
// the mean of grammar accuracy and fluency.
func (m SessionMetrics) PerformanceScore() float64 {
	return 100 * (clamp01(m.GrammarAccuracy) + clamp01(m.FluencyScore)) / 2
}

// SessionRecord is a completed session as kept in the learner's history.
type SessionRecord struct {
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	Topic     string         `json:"topic"`
	Persona   string         `json:"persona,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	Metrics   SessionMetrics `json:"metrics"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
