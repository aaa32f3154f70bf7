package engagement

import "github.com/abhisek/voxtutor/internal/learner"

// Score combines signals into a 0–100 engagement score using the default
// weights.
func Score(s Signals, profile *learner.Profile) float64 {
	return DefaultWeights().Score(s, profile)
}

// Score combines signals into a 0–100 engagement score. Every adjustment is
// additive on top of the baseline; latency thresholds are stretched by the
// learner's level calibration factor.
func (w Weights) Score(s Signals, profile *learner.Profile) float64 {
	score := w.BaselineScore

	factor := w.latencyFactor(profile)
	switch {
	case s.ResponseLatencyMs < w.FastLatencyMs*factor:
		score += w.FastLatencyBonus
	case s.ResponseLatencyMs > w.SlowLatencyMs*factor:
		score -= w.SlowLatencyPenalty
	}

	score += w.ComplexityWeight * clamp(s.MessageComplexity, 0, 1)

	switch s.EmotionalTone {
	case TonePositive:
		score += w.PositiveToneBonus
	case ToneNegative:
		score -= w.NegativeTonePenalty
	}

	switch s.ParticipationLevel {
	case ParticipationHigh:
		score += w.HighParticipationBonus
	case ParticipationLow:
		score -= w.LowParticipationPenalty
	}

	score -= w.FrustrationPenalty * float64(len(s.FrustrationIndicators))
	score += w.ConfidenceWeight * (clamp(s.ConfidenceLevel, 0, 1) - w.ConfidencePivot)

	return clamp(score, 0, 100)
}

// ClassifyRisk maps a score and its signals to a risk tier using the default
// weights.
func ClassifyRisk(score float64, s Signals) Risk {
	return DefaultWeights().ClassifyRisk(score, s)
}

// ClassifyRisk maps a score and its signals to a risk tier.
func (w Weights) ClassifyRisk(score float64, s Signals) Risk {
	switch {
	case score < w.CriticalThreshold || len(s.FrustrationIndicators) > w.MaxFrustrationIndicators:
		return RiskHigh
	case score < w.LowThreshold || s.EmotionalTone == ToneNegative:
		return RiskMedium
	default:
		return RiskLow
	}
}

// isSlow reports whether the signals' latency exceeds the calibrated slow
// threshold.
func (w Weights) isSlow(s Signals, profile *learner.Profile) bool {
	return s.ResponseLatencyMs > w.SlowLatencyMs*w.latencyFactor(profile)
}
