package planner

import (
	"strings"
	"time"

	"github.com/abhisek/voxtutor/internal/learner"
)

// TimeOfDay buckets the local hour for topic affinity.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// TimeOfDayAt returns the bucket for t's hour in t's location.
func TimeOfDayAt(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return Morning
	case h >= 12 && h < 17:
		return Afternoon
	case h >= 17 && h < 22:
		return Evening
	default:
		return Night
	}
}

// ParseTimeOfDay parses a bucket name. Unknown names return "" and false.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	switch tod := TimeOfDay(strings.ToLower(strings.TrimSpace(s))); tod {
	case Morning, Afternoon, Evening, Night:
		return tod, true
	}
	return "", false
}

// Catalog is the static topic knowledge the planner draws on.
type Catalog struct {
	// Easy topics are offered when engagement is low.
	Easy []string
	// Challenging topics are added when engagement is high.
	Challenging []string
	// ByLevel lists level-appropriate topics, used as the normal candidate
	// set and as the fallback when nothing scores.
	ByLevel map[learner.Level][]string
	// Affinity lists topics that suit each part of the day.
	Affinity map[TimeOfDay][]string
}

// DefaultCatalog returns the built-in topic catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Easy: []string{
			"greetings", "family", "food", "hobbies", "daily_routine",
			"weather", "shopping", "travel",
		},
		Challenging: []string{
			"current_events", "technology", "environment", "business",
			"science", "culture", "philosophy",
		},
		ByLevel: map[learner.Level][]string{
			learner.LevelBeginner:          {"greetings", "family", "food", "daily_routine", "weather"},
			learner.LevelElementary:        {"hobbies", "shopping", "travel", "food", "daily_routine"},
			learner.LevelIntermediate:      {"travel", "work", "culture", "health", "hobbies"},
			learner.LevelUpperIntermediate: {"current_events", "technology", "culture", "education", "work"},
			learner.LevelAdvanced:          {"environment", "science", "business", "current_events", "technology"},
			learner.LevelProficient:        {"philosophy", "economics", "science", "literature", "current_events"},
		},
		Affinity: map[TimeOfDay][]string{
			Morning:   {"daily_routine", "current_events", "food", "work", "weather"},
			Afternoon: {"work", "shopping", "hobbies", "education", "travel"},
			Evening:   {"food", "family", "hobbies", "culture", "travel", "literature"},
			Night:     {"culture", "literature", "philosophy", "hobbies", "family"},
		},
	}
}

// LevelTopics returns the level-appropriate topics, defaulting to beginner.
func (c Catalog) LevelTopics(l learner.Level) []string {
	if topics, ok := c.ByLevel[l]; ok && len(topics) > 0 {
		return topics
	}
	return c.ByLevel[learner.LevelBeginner]
}

// all returns every topic the catalog knows, deduplicated, in a stable order.
func (c Catalog) all(level learner.Level) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(topics []string) {
		for _, t := range topics {
			if t != "" && !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	add(c.LevelTopics(level))
	add(c.Easy)
	add(c.Challenging)
	for _, l := range learner.AllLevels() {
		add(c.ByLevel[l])
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DisplayTopic turns a topic key into words ("daily_routine" → "daily routine").
func DisplayTopic(topic string) string {
	return strings.ReplaceAll(topic, "_", " ")
}
