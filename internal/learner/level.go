package learner

import (
	"fmt"
	"strings"
)

// Level is a learner proficiency level. Levels are totally ordered from
// LevelBeginner to LevelProficient.
type Level string

const (
	LevelBeginner          Level = "beginner"
	LevelElementary        Level = "elementary"
	LevelIntermediate      Level = "intermediate"
	LevelUpperIntermediate Level = "upper_intermediate"
	LevelAdvanced          Level = "advanced"
	LevelProficient        Level = "proficient"
)

// AllLevels returns all levels in order from lowest to highest.
func AllLevels() []Level {
	return []Level{
		LevelBeginner,
		LevelElementary,
		LevelIntermediate,
		LevelUpperIntermediate,
		LevelAdvanced,
		LevelProficient,
	}
}

// Rank returns the zero-based position of the level in AllLevels, or -1 for
// an unknown level.
func (l Level) Rank() int {
	for i, lv := range AllLevels() {
		if lv == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool { return l.Rank() >= 0 }

// Next returns the adjacent harder level. The top level returns itself.
func (l Level) Next() Level {
	levels := AllLevels()
	r := l.Rank()
	if r < 0 {
		return LevelBeginner
	}
	if r == len(levels)-1 {
		return l
	}
	return levels[r+1]
}

// Prev returns the adjacent easier level. The bottom level returns itself.
func (l Level) Prev() Level {
	r := l.Rank()
	if r <= 0 {
		return LevelBeginner
	}
	return AllLevels()[r-1]
}

// DisplayName returns a human-readable label for the level.
func (l Level) DisplayName() string {
	switch l {
	case LevelBeginner:
		return "Beginner"
	case LevelElementary:
		return "Elementary"
	case LevelIntermediate:
		return "Intermediate"
	case LevelUpperIntermediate:
		return "Upper Intermediate"
	case LevelAdvanced:
		return "Advanced"
	case LevelProficient:
		return "Proficient"
	default:
		return string(l)
	}
}

// ParseLevel converts a string to a Level. Matching is case-insensitive and
// accepts spaces or hyphens in place of underscores.
func ParseLevel(s string) (Level, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	l := Level(norm)
	if !l.Valid() {
		return "", fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}
