// Package coach turns planning decisions into the words the tutor says. Each
// request goes through the LLM provider first and falls back to phrase banks
// when generation is disabled, fails, or returns unusable content.
package coach

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/llm"
)

// Source reports where a line came from.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// Result is a generated line.
type Result struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// EncourageInput describes the moment a coaching line is needed for.
type EncourageInput struct {
	Profile       *learner.Profile
	Analysis      engagement.Analysis
	Action        engagement.Action
	Topic         string
	LastUtterance string
}

// RationaleInput describes a planning decision to explain.
type RationaleInput struct {
	Level    learner.Level
	Decision string
	Reason   string
}

// Coach generates tutor lines. It is safe for concurrent use.
type Coach struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a coach. A nil provider always uses the fallbacks. rng seeds
// fallback selection; nil always picks the first phrase.
func New(provider llm.Provider, cfg Config, rng *rand.Rand, log *zap.Logger) *Coach {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coach{provider: provider, cfg: cfg, rng: rng, log: log}
}

type messageOutput struct {
	Message string `json:"message"`
	Tone    string `json:"tone"`
}

type rationaleOutput struct {
	Rationale string `json:"rationale"`
}

// Encourage returns a spoken line that carries out an intervention.
func (c *Coach) Encourage(ctx context.Context, in EncourageInput) Result {
	req := llm.Request{
		System:      coachSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildEncourageMessage(in)}},
		Schema:      MessageSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	var out messageOutput
	if err := c.generate(ctx, "coach-encourage", req, &out); err == nil && strings.TrimSpace(out.Message) != "" {
		return Result{Text: strings.TrimSpace(out.Message), Source: SourceLLM}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return Result{Text: fallbackEncourage(in, c.rng), Source: SourceFallback}
}

// Rationale explains a planning decision to the learner.
func (c *Coach) Rationale(ctx context.Context, in RationaleInput) Result {
	req := llm.Request{
		System:      rationaleSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildRationaleMessage(in)}},
		Schema:      RationaleSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	var out rationaleOutput
	if err := c.generate(ctx, "coach-rationale", req, &out); err == nil && strings.TrimSpace(out.Rationale) != "" {
		return Result{Text: strings.TrimSpace(out.Rationale), Source: SourceLLM}
	}
	return Result{Text: fallbackRationale(in), Source: SourceFallback}
}

// Continue returns a follow-up question that keeps a stalled conversation on
// topic.
func (c *Coach) Continue(ctx context.Context, topic string, level learner.Level, lastUtterance string) Result {
	req := llm.Request{
		System:      coachSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildContinueMessage(topic, level, lastUtterance)}},
		Schema:      MessageSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	var out messageOutput
	if err := c.generate(ctx, "coach-continue", req, &out); err == nil && strings.TrimSpace(out.Message) != "" {
		return Result{Text: strings.TrimSpace(out.Message), Source: SourceLLM}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return Result{Text: fallbackContinue(topic, c.rng), Source: SourceFallback}
}

// generate runs one request under the coach timeout and decodes the content
// into out. Every failure is logged and reported so the caller can fall back.
func (c *Coach) generate(ctx context.Context, purpose string, req llm.Request, out any) error {
	if c.provider == nil {
		return errDisabled
	}
	req.Purpose = purpose
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		c.log.Warn("coach generation failed, using fallback", zap.String("purpose", purpose), zap.Error(err))
		return err
	}
	if err := req.Schema.Decode(resp.Content, out); err != nil {
		c.log.Warn("coach response unparsable, using fallback", zap.String("purpose", purpose), zap.Error(err))
		return fmt.Errorf("parse %s response: %w", purpose, err)
	}
	return nil
}

var errDisabled = errors.New("generation disabled")
