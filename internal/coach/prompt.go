package coach

import (
	"fmt"
	"strings"

	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/learner"
)

const coachSystemPrompt = `You are a voice language tutor speaking with an adult learner.
Replies are read aloud, so keep them short, natural and free of lists or markup.
Match vocabulary to the learner's level. Never mention scores, analysis or that you are an AI.`

const rationaleSystemPrompt = `You explain a tutoring plan to the learner in plain words.
Be concrete and encouraging. One or two sentences, no lists.`

func buildEncourageMessage(in EncourageInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Learner level: %s\n", in.Profile.Level().DisplayName())
	if in.Topic != "" {
		fmt.Fprintf(&b, "Current topic: %s\n", in.Topic)
	}
	fmt.Fprintf(&b, "Engagement: %.0f/100 (risk %s)\n", in.Analysis.OverallEngagement, in.Analysis.RiskLevel)
	if len(in.Analysis.DetectedPatterns) > 0 {
		fmt.Fprintf(&b, "Observed: %s\n", strings.Join(in.Analysis.DetectedPatterns, ", "))
	}
	if in.Action.Description != "" {
		fmt.Fprintf(&b, "Planned action: %s (%s)\n", in.Action.Description, in.Action.Type)
	}
	if in.LastUtterance != "" {
		fmt.Fprintf(&b, "Learner just said: %q\n", in.LastUtterance)
	}
	b.WriteString("\nSay one supportive line that carries out the planned action.")
	return b.String()
}

func buildRationaleMessage(in RationaleInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Learner level: %s\n", in.Level.DisplayName())
	fmt.Fprintf(&b, "Decision: %s\n", in.Decision)
	if in.Reason != "" {
		fmt.Fprintf(&b, "Internal reason: %s\n", in.Reason)
	}
	b.WriteString("\nExplain this choice to the learner.")
	return b.String()
}

func buildContinueMessage(topic string, level learner.Level, lastUtterance string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Learner level: %s\nTopic: %s\n", level.DisplayName(), topic)
	if lastUtterance != "" {
		fmt.Fprintf(&b, "Learner just said: %q\n", lastUtterance)
	}
	b.WriteString("\nAsk one open follow-up question that keeps the conversation going.")
	return b.String()
}

// actionKind picks the fallback bank for an action.
func actionKind(a engagement.Action) engagement.ActionType {
	if a.Type == "" {
		return engagement.ActionEncouragement
	}
	return a.Type
}
