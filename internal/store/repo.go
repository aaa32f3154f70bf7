package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/voxtutor/internal/learner"
)

// ErrProfileNotFound is returned when no profile exists for a user.
var ErrProfileNotFound = errors.New("profile not found")

// ErrEventNotFound is returned when an LLM event id does not exist.
var ErrEventNotFound = errors.New("event not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	// Purpose keeps only LLM events with this purpose.
	Purpose string
	// FailedOnly keeps only failed LLM events.
	FailedOnly bool
}

// ProfileReader is the read side the decision pipeline depends on.
type ProfileReader interface {
	GetUserProfile(ctx context.Context, userID string) (*learner.Profile, error)
	GetSessionHistory(ctx context.Context, userID string, limit int) ([]learner.SessionRecord, error)
}

// ProfileRepo stores learner profiles.
type ProfileRepo interface {
	// GetUserProfile returns ErrProfileNotFound when the user is unknown.
	GetUserProfile(ctx context.Context, userID string) (*learner.Profile, error)

	// SaveUserProfile inserts or replaces the profile.
	SaveUserProfile(ctx context.Context, p learner.Profile) error
}

// SessionRepo stores completed session records.
type SessionRepo interface {
	// AppendSession records a completed session.
	AppendSession(ctx context.Context, rec learner.SessionRecord) error

	// GetSessionHistory returns the user's sessions oldest first. A positive
	// limit keeps only the most recent sessions.
	GetSessionHistory(ctx context.Context, userID string, limit int) ([]learner.SessionRecord, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Purpose      string `json:"purpose"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
	RequestBody  string `json:"request_body,omitempty"`
	ResponseBody string `json:"response_body,omitempty"`
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int       `json:"id"`
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	LLMRequestEventData
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents lists events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event by id or ErrEventNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per request purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsageStats, error)
}

// LLMUsageStats is the aggregated usage for one purpose.
type LLMUsageStats struct {
	Purpose      string `json:"purpose"`
	Calls        int    `json:"calls"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	AvgLatencyMs int64  `json:"avg_latency_ms"`
}

// ModelUsageStats is the aggregated usage for one model.
type ModelUsageStats struct {
	Model        string `json:"model"`
	Calls        int    `json:"calls"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}
