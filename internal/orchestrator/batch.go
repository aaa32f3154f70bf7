package orchestrator

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/engagement"
)

// BatchResult is the analysis of one transcript in a batch.
type BatchResult struct {
	SessionID string               `json:"session_id"`
	UserID    string               `json:"user_id"`
	Analysis  *engagement.Analysis `json:"analysis,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// AnalyzeBatch analyses many transcripts with at most Workers in flight.
// Results keep the input order. A failure loading one learner is reported on
// that result; only context cancellation fails the batch.
func (o *Orchestrator) AnalyzeBatch(ctx context.Context, transcripts []conversation.Transcript) ([]BatchResult, error) {
	results := make([]BatchResult, len(transcripts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i := range transcripts {
		tr := &transcripts[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := BatchResult{SessionID: tr.SessionID, UserID: tr.UserID}
			profile, _, err := o.learnerData(gctx, tr.UserID)
			if err != nil {
				res.Error = err.Error()
				o.log.Warn("batch analysis skipped", zap.String("session_id", tr.SessionID), zap.Error(err))
			} else {
				an := o.analyzer.Analyze(tr.Turns, profile, tr.DurationSec, tr.Topic)
				res.Analysis = &an
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
