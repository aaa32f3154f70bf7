package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func quickRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
}

var okReply = MockResponse{Content: json.RawMessage(`{"message":"Bien","tone":"warm"}`)}

func TestRetry_RecoversFromTransientFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewMockProvider(
		MockResponse{Err: Unavailable(errors.New("502"))},
		MockResponse{Err: &Error{Kind: KindRateLimited}},
		okReply,
	)
	p := WithRetry(m, quickRetry(3), zap.New(core))

	resp, err := p.Generate(context.Background(), tutorRequest())
	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, 2, logs.FilterMessage("retrying llm request").Len())
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	m := NewMockProvider(
		MockResponse{Err: Unavailable(errors.New("a"))},
		MockResponse{Err: Unavailable(errors.New("b"))},
		okReply,
	)
	_, err := WithRetry(m, quickRetry(2), nil).Generate(context.Background(), tutorRequest())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, m.CallCount())
}

func TestRetry_NonRetryableErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"truncated", &Error{Kind: KindTruncated}},
		{"client error", errors.New("401 unauthorized")},
		{"canceled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMockProvider(MockResponse{Err: tt.err}, okReply)
			_, err := WithRetry(m, quickRetry(3), nil).Generate(context.Background(), tutorRequest())
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, m.CallCount())
		})
	}
}

func TestRetry_InvalidReplyRetriedOnce(t *testing.T) {
	bad := MockResponse{Err: invalid(json.RawMessage(`{}`), "missing message")}
	m := NewMockProvider(bad, bad, okReply)

	_, err := WithRetry(m, quickRetry(5), nil).Generate(context.Background(), tutorRequest())
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Equal(t, 2, m.CallCount())
}

func TestRetry_StopsWhenContextEnds(t *testing.T) {
	m := NewMockProvider(MockResponse{Err: Unavailable(nil)}, okReply)
	cfg := RetryConfig{MaxAttempts: 3, InitialWait: time.Minute, MaxWait: time.Minute, Multiplier: 1}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := WithRetry(m, cfg, nil).Generate(ctx, tutorRequest())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, m.CallCount())
}

func TestRetry_Delay(t *testing.T) {
	r := &RetryProvider{cfg: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}}
	cause := Unavailable(nil)

	for attempt, base := range map[int]time.Duration{1: 100 * time.Millisecond, 2: 200 * time.Millisecond, 3: 300 * time.Millisecond, 6: 300 * time.Millisecond} {
		d := r.delay(attempt, cause)
		assert.GreaterOrEqual(t, d, base*8/10, "attempt %d", attempt)
		assert.LessOrEqual(t, d, base*12/10, "attempt %d", attempt)
	}
	assert.Equal(t, 4*time.Second, r.delay(1, &Error{Kind: KindRateLimited, RetryAfter: 4 * time.Second}))
}

func TestRetry_ModelDelegates(t *testing.T) {
	assert.Equal(t, "mock", WithRetry(NewMockProvider(), quickRetry(1), nil).Model())
}
