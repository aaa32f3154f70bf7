package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/voxtutor/internal/coach"
	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/trend"
)

// TurnInput is the conversation window after a new learner turn.
type TurnInput struct {
	SessionID   string
	UserID      string
	Topic       string
	Turns       []conversation.Turn
	DurationSec int
}

// TurnResult is everything the voice agent needs to respond to a turn.
type TurnResult struct {
	Analysis      engagement.Analysis       `json:"analysis"`
	Patterns      []engagement.PatternMatch `json:"patterns"`
	Interventions engagement.Plan           `json:"interventions"`
	Trend         trend.Result              `json:"trend"`
	Reply         coach.Result              `json:"reply"`
}

// ProcessTurn analyses the window, folds in the learner's multi-session trend
// and produces the tutor's next line. An urgent intervention gets a coaching
// line; otherwise the tutor keeps the conversation going.
func (o *Orchestrator) ProcessTurn(ctx context.Context, in TurnInput) (*TurnResult, error) {
	start := time.Now()
	profile, history, err := o.learnerData(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	an := o.analyzer.Analyze(in.Turns, profile, in.DurationSec, in.Topic)
	tr := trend.Analyze(history, trend.Month, o.now())
	if tr.Trend == trend.Declining {
		an = o.analyzer.WithPattern(an, engagement.PatternDecliningPerformance, profile, in.Topic)
	}

	res := &TurnResult{
		Analysis:      an,
		Patterns:      o.analyzer.Weights.DetectPatterns(in.Turns),
		Interventions: o.analyzer.Interventions(an, an.Signals, profile, in.Topic),
		Trend:         tr,
	}

	last := lastUserUtterance(in.Turns)
	if an.InterventionUrgency != engagement.UrgencyNone && len(res.Interventions.Immediate) > 0 {
		res.Reply = o.coach.Encourage(ctx, coachInput(res, profile, in.Topic, last))
	} else {
		res.Reply = o.coach.Continue(ctx, in.Topic, profile.Level(), last)
	}

	o.log.Info("turn processed",
		zap.String("session_id", in.SessionID),
		zap.String("user_id", in.UserID),
		zap.Float64("engagement", an.OverallEngagement),
		zap.String("risk", string(an.RiskLevel)),
		zap.String("urgency", string(an.InterventionUrgency)),
		zap.Strings("patterns", an.DetectedPatterns),
		zap.String("reply_source", string(res.Reply.Source)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func lastUserUtterance(turns []conversation.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].IsUser() {
			return turns[i].Content
		}
	}
	return ""
}
