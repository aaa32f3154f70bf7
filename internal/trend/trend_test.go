package trend

import (
	"math"
	"testing"
	"time"

	"github.com/abhisek/voxtutor/internal/learner"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

// session returns a record whose performance score equals score.
func session(daysAgo int, score float64) learner.SessionRecord {
	return learner.SessionRecord{
		SessionID: "s",
		StartedAt: now.AddDate(0, 0, -daysAgo),
		Metrics: learner.SessionMetrics{
			GrammarAccuracy: score / 100,
			FluencyScore:    score / 100,
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyze_ImprovingWeek(t *testing.T) {
	history := []learner.SessionRecord{
		session(6, 65), session(4, 72), session(2, 78), session(1, 85),
	}
	r := Analyze(history, Week, now)
	if r.Trend != Improving {
		t.Errorf("trend = %s, want improving", r.Trend)
	}
	if r.Confidence <= 0.7 {
		t.Errorf("confidence = %f, want > 0.7", r.Confidence)
	}
	if !almostEqual(r.FirstHalfMean, 68.5) || !almostEqual(r.SecondHalfMean, 81.5) {
		t.Errorf("halves = %f / %f, want 68.5 / 81.5", r.FirstHalfMean, r.SecondHalfMean)
	}
}

func TestAnalyze_UnorderedInput(t *testing.T) {
	history := []learner.SessionRecord{
		session(1, 85), session(6, 65), session(2, 78), session(4, 72),
	}
	if r := Analyze(history, All, now); r.Trend != Improving {
		t.Errorf("trend = %s, want improving regardless of input order", r.Trend)
	}
}

func TestAnalyze_Declining(t *testing.T) {
	history := []learner.SessionRecord{
		session(20, 80), session(15, 78), session(10, 60), session(5, 55),
	}
	r := Analyze(history, Month, now)
	if r.Trend != Declining {
		t.Errorf("trend = %s, want declining", r.Trend)
	}
}

func TestAnalyze_StableWithinThreshold(t *testing.T) {
	history := []learner.SessionRecord{
		session(3, 70), session(2, 72), session(1, 74),
	}
	// first half [70], second half [72, 74] → +3
	r := Analyze(history, Week, now)
	if r.Trend != Stable {
		t.Errorf("trend = %s, want stable", r.Trend)
	}
	if !almostEqual(r.Change, 3) {
		t.Errorf("change = %f, want 3", r.Change)
	}
}

func TestAnalyze_TooFewSessions(t *testing.T) {
	for name, history := range map[string][]learner.SessionRecord{
		"none":          nil,
		"one":           {session(1, 90)},
		"filtered away": {session(40, 50), session(35, 90), session(1, 70)},
	} {
		t.Run(name, func(t *testing.T) {
			r := Analyze(history, Week, now)
			if r.Trend != Stable || r.Confidence != BaselineConfidence {
				t.Errorf("got %s/%f, want stable/0.5", r.Trend, r.Confidence)
			}
			if len(r.Recommendations) != 1 {
				t.Errorf("recommendations = %v, want exactly one", r.Recommendations)
			}
		})
	}
}

func TestAnalyze_ConfidenceBounds(t *testing.T) {
	steady := []learner.SessionRecord{session(3, 70), session(2, 70), session(1, 70)}
	if r := Analyze(steady, All, now); r.Confidence != ConfidenceCeiling {
		t.Errorf("zero-variance confidence = %f, want %f", r.Confidence, ConfidenceCeiling)
	}
	wild := []learner.SessionRecord{session(4, 0), session(3, 100), session(2, 0), session(1, 100)}
	if r := Analyze(wild, All, now); r.Confidence != ConfidenceFloor {
		t.Errorf("high-variance confidence = %f, want %f", r.Confidence, ConfidenceFloor)
	}
}

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		in      string
		want    Timeframe
		wantErr bool
	}{
		{"week", Week, false},
		{"Month", Month, false},
		{"", All, false},
		{"all", All, false},
		{"year", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTimeframe(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimeframe(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseTimeframe(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
