package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/voxtutor/internal/store"
)

// LoggingProvider writes one log line and one request-log row per call.
type LoggingProvider struct {
	inner  Provider
	vendor string
	events store.EventRepo
	log    *zap.Logger
}

// WithLogging wraps p. events may be nil to log without persisting; a nil
// logger discards log lines.
func WithLogging(p Provider, vendor string, events store.EventRepo, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingProvider{inner: p, vendor: vendor, events: events, log: log}
}

// Generate implements Provider.
func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	ev := l.event(req, resp, err, time.Since(start))

	fields := []zap.Field{
		zap.String("vendor", ev.Provider),
		zap.String("model", ev.Model),
		zap.String("purpose", ev.Purpose),
		zap.Int64("latency_ms", ev.LatencyMs),
		zap.Int("input_tokens", ev.InputTokens),
		zap.Int("output_tokens", ev.OutputTokens),
	}
	if c := LookupCost(ev.Model); c != nil {
		fields = append(fields, zap.Float64("cost_usd", c.Cost(ev.InputTokens, ev.OutputTokens)))
	}
	if err != nil {
		if k := KindOf(err); k != 0 {
			fields = append(fields, zap.Stringer("kind", k))
		}
		l.log.Warn("llm request failed", append(fields, zap.Error(err))...)
	} else {
		l.log.Debug("llm request", fields...)
	}

	if l.events != nil {
		// A caller timeout must not drop the record of the call it cut short.
		if werr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); werr != nil {
			l.log.Warn("failed to record LLM request event", zap.Error(werr))
		}
	}
	return resp, err
}

func (l *LoggingProvider) event(req Request, resp *Response, err error, took time.Duration) store.LLMRequestEventData {
	ev := store.LLMRequestEventData{
		Provider:    l.vendor,
		Model:       l.inner.Model(),
		Purpose:     req.purpose(),
		LatencyMs:   took.Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		// Keep the rejected reply so it can be inspected with `llm view`.
		var e *Error
		if errors.As(err, &e) && len(e.Content) > 0 {
			ev.ResponseBody = string(e.Content)
		}
	}
	return ev
}

// transcript renders a request as tagged blocks for the request log.
func transcript(req Request) string {
	var b strings.Builder
	block := func(tag, body string) {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", tag, body)
	}
	if req.System != "" {
		block("system", req.System)
	}
	for _, m := range req.Messages {
		block(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			block("schema: "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
