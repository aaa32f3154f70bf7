package llm

import "sort"

// ModelCost holds per-million-token pricing for a model.
// Prices are in USD per 1 million tokens, sourced from models.dev.
type ModelCost struct {
	InputPerMTok  float64 // USD per 1M input tokens
	OutputPerMTok float64 // USD per 1M output tokens
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
func LookupCost(modelID string) *ModelCost {
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	return nil
}

// modelCosts lists USD per 1M tokens for the models the tutor is usually
// pointed at. Unknown models log without a cost estimate.
var modelCosts = map[string]ModelCost{
	// Anthropic
	"claude-3-5-haiku-latest":  {0.8, 4},
	"claude-haiku-4-5":         {1, 5},
	"claude-opus-4-5":          {5, 25},
	"claude-sonnet-4-20250514": {3, 15},
	"claude-sonnet-4-5":        {3, 15},

	// OpenAI
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o4-mini":      {1.1, 4.4},

	// Google (Gemini)
	"gemini-2.0-flash":         {0.1, 0.4},
	"gemini-2.0-flash-lite":    {0.075, 0.3},
	"gemini-2.5-flash":         {0.3, 2.5},
	"gemini-2.5-flash-lite":    {0.1, 0.4},
	"gemini-2.5-pro":           {1.25, 10},
	"gemini-flash-latest":      {0.3, 2.5},
	"gemini-flash-lite-latest": {0.1, 0.4},
}

// PricedModel pairs a model id with its cost.
type PricedModel struct {
	Model string
	Cost  ModelCost
}

// PricedModels returns every model with known pricing, sorted by id.
func PricedModels() []PricedModel {
	out := make([]PricedModel, 0, len(modelCosts))
	for id, c := range modelCosts {
		out = append(out, PricedModel{Model: id, Cost: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}
