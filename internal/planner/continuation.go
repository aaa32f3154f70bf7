package planner

import (
	"fmt"
	"math/rand"
)

var continuationTemplates = []string{
	"Let's keep going with %s. What else comes to mind about it?",
	"Tell me a little more about %s. Anything from your own life?",
	"What do you find most interesting about %s?",
	"Let's try one more question on %s: how would you describe it to a friend?",
	"Take your time. What is something you'd like to say about %s?",
}

// ContinuationPrompt returns a short nudge about topic for a stalled
// conversation. The template is chosen with rng; a nil rng always uses the
// first template.
func ContinuationPrompt(topic string, rng *rand.Rand) string {
	if topic == "" {
		topic = "what we were discussing"
	} else {
		topic = DisplayTopic(topic)
	}
	i := 0
	if rng != nil {
		i = rng.Intn(len(continuationTemplates))
	}
	return fmt.Sprintf(continuationTemplates[i], topic)
}
