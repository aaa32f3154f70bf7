package engagement

import (
	"regexp"
	"strings"
)

var positiveWords = map[string]bool{
	"good": true, "great": true, "love": true, "like": true, "enjoy": true,
	"enjoyed": true, "fun": true, "interesting": true, "excited": true,
	"awesome": true, "amazing": true, "happy": true, "thanks": true,
	"thank": true, "cool": true, "nice": true, "wonderful": true,
	"fantastic": true, "excellent": true, "perfect": true, "glad": true,
	"beautiful": true, "favorite": true, "favourite": true,
}

var negativeWords = map[string]bool{
	"bad": true, "hate": true, "boring": true, "bored": true,
	"difficult": true, "hard": true, "confused": true, "confusing": true,
	"frustrated": true, "frustrating": true, "annoying": true,
	"annoyed": true, "tired": true, "stupid": true, "terrible": true,
	"awful": true, "sad": true, "worried": true, "nervous": true,
	"ugh": true, "wrong": true,
}

// Frustration indicator labels.
const (
	IndicatorComprehension = "comprehension_difficulty"
	IndicatorDifficulty    = "difficulty_complaint"
	IndicatorConfusion     = "confusion"
	IndicatorHelpRequest   = "help_request"
	IndicatorInability     = "inability"
)

// frustrationPattern pairs an indicator label with its matcher.
type frustrationPattern struct {
	label string
	re    *regexp.Regexp
}

// frustrationPatterns are checked in order against each learner turn.
var frustrationPatterns = []frustrationPattern{
	{IndicatorComprehension, regexp.MustCompile(`(?i)\b(?:(?:don't|dont|do not|didn't|didnt|did not) (?:understand|get it)|(?:doesn't|doesnt|does not) make sense|makes no sense)\b`)},
	{IndicatorDifficulty, regexp.MustCompile(`(?i)\b(?:(?:too|so|really|very) (?:hard|difficult|complicated|fast)|this is (?:hard|difficult))\b`)},
	{IndicatorConfusion, regexp.MustCompile(`(?i)\b(?:confus(?:ed|ing)|lost|puzzled)\b`)},
	{IndicatorHelpRequest, regexp.MustCompile(`(?i)\b(?:help|can you explain|say (?:it|that) again|repeat that)\b`)},
	{IndicatorInability, regexp.MustCompile(`(?i)\b(?:can't|cant|cannot|can not|unable to)\b`)},
}

// normalizeApostrophes maps typographic apostrophes to ASCII so the
// frustration patterns match transcripts from any speech engine.
var apostropheReplacer = strings.NewReplacer("’", "'", "‘", "'")

// matchFrustration returns the indicator labels matched in text, in pattern
// order. Each label appears at most once.
func matchFrustration(text string) []string {
	text = apostropheReplacer.Replace(text)
	var labels []string
	for _, p := range frustrationPatterns {
		if p.re.MatchString(text) {
			labels = append(labels, p.label)
		}
	}
	return labels
}

// toneCounts counts positive and negative lexicon hits among words.
func toneCounts(words []string) (pos, neg int) {
	for _, w := range words {
		w = apostropheReplacer.Replace(w)
		if positiveWords[w] {
			pos++
		}
		if negativeWords[w] {
			neg++
		}
	}
	return pos, neg
}
