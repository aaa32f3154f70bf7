package planner

import (
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/learner"
)

var now = time.Date(2026, 5, 10, 19, 0, 0, 0, time.UTC)

func rec(daysAgo int, topic string, score float64) learner.SessionRecord {
	return learner.SessionRecord{
		SessionID: topic,
		Topic:     topic,
		StartedAt: now.AddDate(0, 0, -daysAgo),
		Metrics: learner.SessionMetrics{
			DurationSec:     600,
			GrammarAccuracy: score / 100,
			FluencyScore:    score / 100,
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSelectTopic_NoHistoryUsesLevelFallback(t *testing.T) {
	p := &learner.Profile{
		CurrentLevel:    learner.LevelBeginner,
		PreferredTopics: []string{"travel", "food"},
	}
	r := SelectTopic(p, nil, 60, Evening)
	if !contains(DefaultCatalog().LevelTopics(learner.LevelBeginner), r.Topic) {
		t.Errorf("topic %q not in the beginner fallback list", r.Topic)
	}
	if r.Topic != "food" {
		t.Errorf("topic = %q, want the preferred fallback topic food", r.Topic)
	}
	if !almostEqual(r.Confidence, 0.6) {
		t.Errorf("confidence = %f, want 0.6", r.Confidence)
	}
	if !r.Fallback {
		t.Error("Fallback = false, want true")
	}
}

func TestSelectTopic_NoHistoryNoPreference(t *testing.T) {
	r := SelectTopic(nil, nil, 60, Morning)
	if r.Topic != "greetings" {
		t.Errorf("topic = %q, want greetings", r.Topic)
	}
	if r.Difficulty != learner.LevelBeginner {
		t.Errorf("difficulty = %s, want beginner", r.Difficulty)
	}
}

func TestSelectTopic_WeightsHistoryAndExcludesRecent(t *testing.T) {
	p := &learner.Profile{CurrentLevel: learner.LevelIntermediate}
	history := []learner.SessionRecord{
		rec(10, "work", 90),
		rec(5, "food", 80),
		rec(4, "family", 80),
		rec(3, "hobbies", 80),
		rec(2, "culture", 80),
		rec(1, "travel", 80),
	}
	r := SelectTopic(p, history, 55, Evening)
	for _, recent := range []string{"food", "family", "hobbies", "culture", "travel"} {
		if r.Topic == recent {
			t.Fatalf("recently covered topic %q recommended", recent)
		}
	}
	// work: 0.4×0.9 + 0.2 (level set) = 0.56 beats literature (0.3, evening).
	if r.Topic != "work" {
		t.Errorf("topic = %q, want work", r.Topic)
	}
	if !almostEqual(r.Confidence, 0.4+0.5*0.56) {
		t.Errorf("confidence = %f, want %f", r.Confidence, 0.4+0.5*0.56)
	}
	if r.Fallback {
		t.Error("Fallback = true, want false")
	}
	if !strings.Contains(r.Reason, "past performance") {
		t.Errorf("reason %q should mention past performance", r.Reason)
	}
}

func TestSelectTopic_PreferenceBreaksTies(t *testing.T) {
	p := &learner.Profile{
		CurrentLevel:    learner.LevelBeginner,
		PreferredTopics: []string{"weather", "greetings"},
	}
	c := Catalog{
		Easy:        []string{"greetings", "weather"},
		Challenging: []string{},
		ByLevel:     map[learner.Level][]string{learner.LevelBeginner: {"greetings", "weather"}},
		Affinity:    map[TimeOfDay][]string{},
	}
	w := DefaultWeights()
	w.PreferenceWeight = 0
	pl := &Planner{Weights: w, Catalog: c}
	r := pl.SelectTopic(p, []learner.SessionRecord{rec(30, "", 50)}, 55, Morning)
	if r.Topic != "weather" {
		t.Errorf("topic = %q, want weather (first preferred on a tie)", r.Topic)
	}
}

func TestSelectTopic_EngagementShapesSession(t *testing.T) {
	p := &learner.Profile{CurrentLevel: learner.LevelIntermediate}
	history := []learner.SessionRecord{rec(3, "work", 70)}

	low := SelectTopic(p, history, 30, Afternoon)
	if low.Difficulty != learner.LevelElementary {
		t.Errorf("low engagement difficulty = %s, want elementary", low.Difficulty)
	}
	if low.EstimatedDurationMinutes != 10 {
		t.Errorf("low engagement duration = %d, want 10", low.EstimatedDurationMinutes)
	}
	if !contains(DefaultCatalog().Easy, low.Topic) {
		t.Errorf("low engagement topic %q is not an easy topic", low.Topic)
	}

	high := SelectTopic(p, history, 85, Afternoon)
	if high.Difficulty != learner.LevelIntermediate {
		t.Errorf("high engagement difficulty = %s, want intermediate", high.Difficulty)
	}
	if high.EstimatedDurationMinutes != 20 {
		t.Errorf("high engagement duration = %d, want 20", high.EstimatedDurationMinutes)
	}

	normal := SelectTopic(p, history, 55, Afternoon)
	if normal.EstimatedDurationMinutes != 15 {
		t.Errorf("normal engagement duration = %d, want 15", normal.EstimatedDurationMinutes)
	}
}

func TestAdjustDifficulty_Advance(t *testing.T) {
	p := &learner.Profile{CurrentLevel: learner.LevelIntermediate}
	perf := Performance{
		Current: learner.SessionMetrics{DurationSec: 600, GrammarAccuracy: 0.85, FluencyScore: 0.85},
		History: []learner.SessionRecord{rec(6, "a", 65), rec(4, "b", 72), rec(2, "c", 78), rec(1, "d", 85)},
		Now:     now,
	}
	adj := AdjustDifficulty(p, nil, perf)
	if adj.RecommendedDifficulty != learner.LevelUpperIntermediate {
		t.Errorf("recommended = %s, want upper_intermediate", adj.RecommendedDifficulty)
	}
	if adj.Strength != StrengthModerate {
		t.Errorf("strength = %s, want moderate", adj.Strength)
	}
}

func TestAdjustDifficulty_DecliningWithStruggles(t *testing.T) {
	p := &learner.Profile{CurrentLevel: learner.LevelAdvanced}
	perf := Performance{
		Current: learner.SessionMetrics{
			DurationSec:     600,
			GrammarAccuracy: 0.5,
			FluencyScore:    0.5,
			ErrorCategories: map[string]int{"articles": 4, "tense": 1},
		},
		History: []learner.SessionRecord{rec(20, "a", 80), rec(15, "b", 78), rec(10, "c", 60), rec(5, "d", 55)},
	}
	adj := AdjustDifficulty(p, nil, perf)
	if adj.RecommendedDifficulty != learner.LevelUpperIntermediate {
		t.Errorf("recommended = %s, want upper_intermediate (one level down)", adj.RecommendedDifficulty)
	}
	if adj.Strength != StrengthMajor {
		t.Errorf("strength = %s, want major", adj.Strength)
	}
	want := []string{"grammar", "fluency", "articles"}
	if strings.Join(adj.StruggleAreas, ",") != strings.Join(want, ",") {
		t.Errorf("struggle areas = %v, want %v", adj.StruggleAreas, want)
	}
}

func TestAdjustDifficulty_FatigueRetreatsMinor(t *testing.T) {
	p := &learner.Profile{CurrentLevel: learner.LevelIntermediate}
	perf := Performance{
		Current: learner.SessionMetrics{DurationSec: 50 * 60, GrammarAccuracy: 0.8, FluencyScore: 0.8},
		History: []learner.SessionRecord{rec(3, "a", 70), rec(2, "b", 70), rec(1, "c", 70)},
	}
	adj := AdjustDifficulty(p, nil, perf)
	if adj.RecommendedDifficulty != learner.LevelElementary || adj.Strength != StrengthMinor {
		t.Errorf("got %s/%s, want elementary/minor", adj.RecommendedDifficulty, adj.Strength)
	}
	if adj.Fatigue != 1 {
		t.Errorf("fatigue = %f, want 1", adj.Fatigue)
	}
}

func TestAdjustDifficulty_SlowdownCountsAsFatigue(t *testing.T) {
	base := time.Date(2026, 5, 10, 19, 0, 0, 0, time.UTC)
	var turns []conversation.Turn
	at := base
	for _, gap := range []time.Duration{2 * time.Second, 2 * time.Second, 6 * time.Second, 6 * time.Second} {
		turns = append(turns, conversation.NewTurn(conversation.SenderAgent, "Go on.", at))
		at = at.Add(gap)
		turns = append(turns, conversation.NewTurn(conversation.SenderUser, "well I think so", at))
		at = at.Add(time.Second)
	}
	p := &learner.Profile{CurrentLevel: learner.LevelElementary}
	perf := Performance{Current: learner.SessionMetrics{DurationSec: 300, GrammarAccuracy: 0.8, FluencyScore: 0.8}}
	adj := AdjustDifficulty(p, turns, perf)
	if adj.Fatigue < 0.7 {
		t.Errorf("fatigue = %f, want >= 0.7 from response slowdown", adj.Fatigue)
	}
	if adj.RecommendedDifficulty != learner.LevelBeginner {
		t.Errorf("recommended = %s, want beginner", adj.RecommendedDifficulty)
	}
}

func TestAdjustDifficulty_Maintain(t *testing.T) {
	p := &learner.Profile{CurrentLevel: learner.LevelIntermediate}
	perf := Performance{
		History: []learner.SessionRecord{rec(3, "a", 70), rec(2, "b", 70), rec(1, "c", 70)},
	}
	adj := AdjustDifficulty(p, nil, perf)
	if adj.RecommendedDifficulty != learner.LevelIntermediate || adj.Strength != StrengthMinor {
		t.Errorf("got %s/%s, want intermediate/minor", adj.RecommendedDifficulty, adj.Strength)
	}
}

func TestAdjustDifficulty_NeverMoreThanOneLevel(t *testing.T) {
	histories := [][]learner.SessionRecord{
		nil,
		{rec(4, "a", 10), rec(3, "b", 40), rec(2, "c", 80), rec(1, "d", 100)},
		{rec(4, "a", 100), rec(3, "b", 60), rec(2, "c", 20), rec(1, "d", 0)},
	}
	metrics := []learner.SessionMetrics{
		{},
		{DurationSec: 7200, GrammarAccuracy: 0.1, FluencyScore: 0.1, ErrorCategories: map[string]int{"a": 9, "b": 9, "c": 9}},
		{DurationSec: 60, GrammarAccuracy: 1, FluencyScore: 1},
	}
	for _, lvl := range learner.AllLevels() {
		p := &learner.Profile{CurrentLevel: lvl}
		for _, h := range histories {
			for _, m := range metrics {
				adj := AdjustDifficulty(p, nil, Performance{Current: m, History: h})
				diff := adj.RecommendedDifficulty.Rank() - lvl.Rank()
				if diff < -1 || diff > 1 {
					t.Fatalf("%s → %s moves %d levels", lvl, adj.RecommendedDifficulty, diff)
				}
			}
		}
	}
}

func TestContinuationPrompt(t *testing.T) {
	got := ContinuationPrompt("daily_routine", nil)
	if got != "Let's keep going with daily routine. What else comes to mind about it?" {
		t.Errorf("nil rng prompt = %q", got)
	}
	a := ContinuationPrompt("travel", rand.New(rand.NewSource(3)))
	b := ContinuationPrompt("travel", rand.New(rand.NewSource(3)))
	if a != b {
		t.Errorf("same seed gave %q and %q", a, b)
	}
	if !strings.Contains(a, "travel") {
		t.Errorf("prompt %q does not mention the topic", a)
	}
}

func TestTimeOfDayAt(t *testing.T) {
	tests := []struct {
		hour int
		want TimeOfDay
	}{
		{6, Morning}, {11, Morning}, {12, Afternoon}, {18, Evening}, {23, Night}, {2, Night},
	}
	for _, tt := range tests {
		at := time.Date(2026, 1, 1, tt.hour, 0, 0, 0, time.UTC)
		if got := TimeOfDayAt(at); got != tt.want {
			t.Errorf("hour %d: got %s, want %s", tt.hour, got, tt.want)
		}
	}
}
