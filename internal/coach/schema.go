package coach

import "github.com/abhisek/voxtutor/internal/llm"

// MessageSchema defines the JSON schema for a spoken coaching line.
var MessageSchema = &llm.Schema{
	Name:        "coach-message",
	Description: "One short line the tutor says aloud to the learner",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "What the tutor says (1-2 sentences, under 40 words)",
				"minLength":   1,
			},
			"tone": map[string]any{
				"type": "string",
				"enum": []any{"warm", "playful", "calm"},
			},
		},
		"required":             []any{"message", "tone"},
		"additionalProperties": false,
	},
}

// RationaleSchema defines the JSON schema for a plan rationale.
var RationaleSchema = &llm.Schema{
	Name:        "plan-rationale",
	Description: "A learner-facing explanation of a planning decision",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"rationale": map[string]any{
				"type":        "string",
				"description": "Why this choice suits the learner right now (1-2 sentences)",
				"minLength":   1,
			},
		},
		"required":             []any{"rationale"},
		"additionalProperties": false,
	},
}
