package engagement

import (
	"fmt"

	"github.com/abhisek/voxtutor/internal/learner"
)

// Weights holds every tuning constant used by signal extraction, scoring,
// pattern detection and intervention rules. The defaults are hand-tuned and
// load-bearing; override them only through configuration.
type Weights struct {
	BaselineScore float64 `yaml:"baseline_score"`

	DefaultLatencyMs   float64 `yaml:"default_latency_ms"`
	FastLatencyMs      float64 `yaml:"fast_latency_ms"`
	SlowLatencyMs      float64 `yaml:"slow_latency_ms"`
	FastLatencyBonus   float64 `yaml:"fast_latency_bonus"`
	SlowLatencyPenalty float64 `yaml:"slow_latency_penalty"`

	ComplexityWeight float64 `yaml:"complexity_weight"`
	WordCountCap     float64 `yaml:"word_count_cap"`
	WordLengthCap    float64 `yaml:"word_length_cap"`

	PositiveToneBonus   float64 `yaml:"positive_tone_bonus"`
	NegativeTonePenalty float64 `yaml:"negative_tone_penalty"`

	HighParticipationBonus  float64 `yaml:"high_participation_bonus"`
	LowParticipationPenalty float64 `yaml:"low_participation_penalty"`
	HighMessagesPerMinute   float64 `yaml:"high_messages_per_minute"`
	HighWordsPerMessage     float64 `yaml:"high_words_per_message"`
	MediumMessagesPerMinute float64 `yaml:"medium_messages_per_minute"`
	MediumWordsPerMessage   float64 `yaml:"medium_words_per_message"`

	FrustrationPenalty float64 `yaml:"frustration_penalty"`

	DefaultConfidence float64 `yaml:"default_confidence"`
	ConfidenceWeight  float64 `yaml:"confidence_weight"`
	ConfidencePivot   float64 `yaml:"confidence_pivot"`

	// Risk and rule thresholds on the 0–100 score.
	CriticalThreshold        float64 `yaml:"critical_threshold"`
	LowThreshold             float64 `yaml:"low_threshold"`
	EngagedThreshold         float64 `yaml:"engaged_threshold"`
	MaxFrustrationIndicators int     `yaml:"max_frustration_indicators"`

	// LevelLatencyFactor stretches the latency thresholds per learner level;
	// beginners are given more time before a pause counts as slow.
	LevelLatencyFactor map[learner.Level]float64 `yaml:"level_latency_factor"`

	Patterns PatternWeights `yaml:"patterns"`
}

// PatternWeights holds the disengagement pattern thresholds.
type PatternWeights struct {
	MinSample           int     `yaml:"min_sample"`
	VerbosityDropRatio  float64 `yaml:"verbosity_drop_ratio"`
	LatencyRiseRatio    float64 `yaml:"latency_rise_ratio"`
	MinimalWords        int     `yaml:"minimal_words"`
	MinimalWindow       int     `yaml:"minimal_window"`
	MinimalShare        float64 `yaml:"minimal_share"`
	ConfidenceDropRatio float64 `yaml:"confidence_drop_ratio"`

	VerbosityConfidence   float64 `yaml:"verbosity_confidence"`
	LatencyConfidence     float64 `yaml:"latency_confidence"`
	MinimalConfidence     float64 `yaml:"minimal_confidence"`
	ConfidenceConfidence  float64 `yaml:"declining_confidence_confidence"`
	FrustrationConfidence float64 `yaml:"frustration_confidence"`
}

// DefaultWeights returns the standard tuning.
func DefaultWeights() Weights {
	return Weights{
		BaselineScore: 50,

		DefaultLatencyMs:   5000,
		FastLatencyMs:      3000,
		SlowLatencyMs:      10000,
		FastLatencyBonus:   20,
		SlowLatencyPenalty: 20,

		ComplexityWeight: 25,
		WordCountCap:     20,
		WordLengthCap:    6,

		PositiveToneBonus:   15,
		NegativeTonePenalty: 25,

		HighParticipationBonus:  20,
		LowParticipationPenalty: 20,
		HighMessagesPerMinute:   2,
		HighWordsPerMessage:     8,
		MediumMessagesPerMinute: 1,
		MediumWordsPerMessage:   4,

		FrustrationPenalty: 10,

		DefaultConfidence: 0.5,
		ConfidenceWeight:  30,
		ConfidencePivot:   0.5,

		CriticalThreshold:        25,
		LowThreshold:             40,
		EngagedThreshold:         70,
		MaxFrustrationIndicators: 2,

		LevelLatencyFactor: map[learner.Level]float64{
			learner.LevelBeginner:          1.5,
			learner.LevelElementary:        1.25,
			learner.LevelIntermediate:      1.0,
			learner.LevelUpperIntermediate: 0.9,
			learner.LevelAdvanced:          0.85,
			learner.LevelProficient:        0.8,
		},

		Patterns: PatternWeights{
			MinSample:           3,
			VerbosityDropRatio:  0.7,
			LatencyRiseRatio:    1.5,
			MinimalWords:        2,
			MinimalWindow:       5,
			MinimalShare:        0.6,
			ConfidenceDropRatio: 0.8,

			VerbosityConfidence:   0.7,
			LatencyConfidence:     0.6,
			MinimalConfidence:     0.8,
			ConfidenceConfidence:  0.65,
			FrustrationConfidence: 0.9,
		},
	}
}

// Validate checks that thresholds are ordered and positive.
func (w Weights) Validate() error {
	if w.FastLatencyMs <= 0 || w.SlowLatencyMs <= w.FastLatencyMs {
		return fmt.Errorf("latency thresholds must satisfy 0 < fast (%v) < slow (%v)", w.FastLatencyMs, w.SlowLatencyMs)
	}
	if !(w.CriticalThreshold <= w.LowThreshold && w.LowThreshold <= w.EngagedThreshold) {
		return fmt.Errorf("score thresholds must satisfy critical <= low <= engaged")
	}
	if w.WordCountCap <= 0 || w.WordLengthCap <= 0 {
		return fmt.Errorf("complexity caps must be positive")
	}
	if w.Patterns.MinSample < 1 {
		return fmt.Errorf("patterns.min_sample must be >= 1")
	}
	for lvl, f := range w.LevelLatencyFactor {
		if f <= 0 {
			return fmt.Errorf("level_latency_factor[%s] must be positive", lvl)
		}
	}
	return nil
}

// latencyFactor returns the calibration factor for the learner's level.
func (w Weights) latencyFactor(p *learner.Profile) float64 {
	if p == nil {
		return 1
	}
	if f, ok := w.LevelLatencyFactor[p.Level()]; ok && f > 0 {
		return f
	}
	return 1
}
