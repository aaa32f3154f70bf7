package coach

import (
	"fmt"
	"math/rand"

	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/planner"
)

var encourageBank = map[engagement.ActionType][]string{
	engagement.ActionEncouragement: {
		"You're doing really well. Every sentence you try makes the next one easier.",
		"That was a good effort. Mistakes are how we learn, so keep them coming.",
		"I can hear you improving. Let's keep going together.",
		"Nice work sticking with it. You're explaining yourself more clearly already.",
	},
	engagement.ActionBreakSuggestion: {
		"We've covered a lot. How about a short break before we continue?",
		"You've worked hard. Let's pause for a minute and come back fresh.",
		"Great effort today. A quick stretch might help before the next part.",
	},
	engagement.ActionTopicChange: {
		"Let's switch things up and talk about something new.",
		"How about we try a different topic for a while?",
		"I have an idea for something fresh to talk about. Ready?",
	},
	engagement.ActionDifficultyAdjust: {
		"Let's adjust the pace a little so it feels just right.",
		"I'll change how we practise so it fits you better.",
		"Let's try this a slightly different way.",
	},
	engagement.ActionAgentSwitch: {
		"I'd like to bring in a colleague who's great with exactly this.",
		"Someone else on the team can help with this part. Let me introduce them.",
	},
}

var frustrationBank = []string{
	"It's completely normal to find this tricky. Let's slow down and take it one step at a time.",
	"No worries at all. Let's try a simpler way to say it.",
	"That's a hard one, and you're handling it well. Let's break it into smaller pieces.",
}

// fallbackEncourage picks a line for the action from the phrase banks.
// Frustration takes priority over the action's own bank.
func fallbackEncourage(in EncourageInput, rng *rand.Rand) string {
	bank := encourageBank[actionKind(in.Action)]
	if in.Analysis.HasPattern(engagement.PatternFrustration) {
		bank = frustrationBank
	}
	if len(bank) == 0 {
		bank = encourageBank[engagement.ActionEncouragement]
	}
	return pick(bank, rng)
}

func fallbackRationale(in RationaleInput) string {
	if in.Reason != "" {
		return in.Reason
	}
	return fmt.Sprintf("We'll go with %s because it fits where you are right now.", in.Decision)
}

func fallbackContinue(topic string, rng *rand.Rand) string {
	return planner.ContinuationPrompt(topic, rng)
}

// pick chooses an entry with rng; a nil rng always picks the first.
func pick(bank []string, rng *rand.Rand) string {
	if rng == nil {
		return bank[0]
	}
	return bank[rng.Intn(len(bank))]
}
