package coach

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/llm"
)

func encourageInput() EncourageInput {
	return EncourageInput{
		Profile:  &learner.Profile{CurrentLevel: learner.LevelElementary},
		Analysis: engagement.Analysis{OverallEngagement: 35, RiskLevel: engagement.RiskMedium},
		Action:   engagement.Action{Type: engagement.ActionEncouragement, Description: "Offer specific praise"},
		Topic:    "travel",
	}
}

func TestEncourage_UsesLLM(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"message":"  You explained your trip so clearly!  ","tone":"warm"}`),
	})
	c := New(mock, DefaultConfig(), nil, nil)

	got := c.Encourage(context.Background(), encourageInput())
	if got.Source != SourceLLM {
		t.Fatalf("source = %s, want llm", got.Source)
	}
	if got.Text != "You explained your trip so clearly!" {
		t.Errorf("text = %q", got.Text)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema != MessageSchema {
		t.Error("expected the coach message schema")
	}
	if !strings.Contains(req.Messages[0].Content, "Current topic: travel") {
		t.Errorf("prompt missing topic:\n%s", req.Messages[0].Content)
	}
}

func TestEncourage_FallsBackOnError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: llm.Unavailable(errors.New("down"))})
	c := New(mock, DefaultConfig(), nil, nil)

	got := c.Encourage(context.Background(), encourageInput())
	if got.Source != SourceFallback {
		t.Fatalf("source = %s, want fallback", got.Source)
	}
	if got.Text != encourageBank[engagement.ActionEncouragement][0] {
		t.Errorf("text = %q, want first encouragement phrase", got.Text)
	}
}

func TestEncourage_FallsBackOnBadContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `sure thing`},
		{"empty message", `{"message":"   ","tone":"warm"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.content)})
			got := New(mock, DefaultConfig(), nil, nil).Encourage(context.Background(), encourageInput())
			if got.Source != SourceFallback {
				t.Errorf("source = %s, want fallback", got.Source)
			}
		})
	}
}

func TestEncourage_NilProvider(t *testing.T) {
	got := New(nil, DefaultConfig(), nil, nil).Encourage(context.Background(), encourageInput())
	if got.Source != SourceFallback || got.Text == "" {
		t.Fatalf("got %+v, want a fallback line", got)
	}
}

func TestEncourage_FrustrationBank(t *testing.T) {
	in := encourageInput()
	in.Analysis.DetectedPatterns = []string{engagement.PatternFrustration}
	got := New(nil, DefaultConfig(), nil, nil).Encourage(context.Background(), in)
	if got.Text != frustrationBank[0] {
		t.Errorf("text = %q, want first frustration phrase", got.Text)
	}
}

func TestEncourage_ActionBanks(t *testing.T) {
	for kind, bank := range encourageBank {
		in := encourageInput()
		in.Action.Type = kind
		got := New(nil, DefaultConfig(), nil, nil).Encourage(context.Background(), in)
		if got.Text != bank[0] {
			t.Errorf("%s: text = %q, want %q", kind, got.Text, bank[0])
		}
	}
}

func TestEncourage_SeededFallbackIsDeterministic(t *testing.T) {
	a := New(nil, DefaultConfig(), rand.New(rand.NewSource(7)), nil)
	b := New(nil, DefaultConfig(), rand.New(rand.NewSource(7)), nil)
	for i := 0; i < 5; i++ {
		x := a.Encourage(context.Background(), encourageInput())
		y := b.Encourage(context.Background(), encourageInput())
		if x != y {
			t.Fatalf("run %d: %q != %q with the same seed", i, x.Text, y.Text)
		}
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) Model() string { return "slow" }

func TestEncourage_TimeoutFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 10 * time.Millisecond
	start := time.Now()
	got := New(slowProvider{}, cfg, nil, nil).Encourage(context.Background(), encourageInput())
	if got.Source != SourceFallback {
		t.Fatalf("source = %s, want fallback", got.Source)
	}
	if time.Since(start) > time.Second {
		t.Fatal("coach timeout did not bound the call")
	}
}

func TestRationale(t *testing.T) {
	in := RationaleInput{Level: learner.LevelIntermediate, Decision: "topic food", Reason: "You did well on food last time."}

	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"rationale":"Food went great last time, so let's build on it."}`)})
	got := New(mock, DefaultConfig(), nil, nil).Rationale(context.Background(), in)
	if got.Source != SourceLLM || !strings.HasPrefix(got.Text, "Food went great") {
		t.Errorf("llm rationale = %+v", got)
	}

	got = New(nil, DefaultConfig(), nil, nil).Rationale(context.Background(), in)
	if got.Text != in.Reason || got.Source != SourceFallback {
		t.Errorf("fallback rationale = %+v, want the reason", got)
	}

	got = New(nil, DefaultConfig(), nil, nil).Rationale(context.Background(), RationaleInput{Decision: "a break"})
	if !strings.Contains(got.Text, "a break") {
		t.Errorf("fallback rationale = %q, want it to name the decision", got.Text)
	}
}

func TestContinue(t *testing.T) {
	got := New(nil, DefaultConfig(), nil, nil).Continue(context.Background(), "travel", learner.LevelBeginner, "")
	if got.Source != SourceFallback || !strings.Contains(got.Text, "travel") {
		t.Errorf("fallback continue = %+v", got)
	}

	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"message":"Where would you go next?","tone":"playful"}`)})
	got = New(mock, DefaultConfig(), nil, nil).Continue(context.Background(), "travel", learner.LevelBeginner, "I like Spain")
	if got.Source != SourceLLM || got.Text != "Where would you go next?" {
		t.Errorf("llm continue = %+v", got)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "I like Spain") {
		t.Error("prompt should quote the learner's last utterance")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := DefaultConfig()
	bad.Temperature = 2
	if err := bad.Validate(); err == nil {
		t.Error("expected error for temperature 2")
	}
}
