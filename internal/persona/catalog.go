// Package persona decides which tutor persona should be speaking and
// sequences handoffs between personas.
package persona

import "github.com/abhisek/voxtutor/internal/learner"

// Persona is a distinct tutor behaviour profile.
type Persona struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Style       string         `json:"style" yaml:"style"`
	Specialties []learner.Goal `json:"specialties" yaml:"specialties"`
	// Intro completes "…, who <Intro>." in an explicit handoff announcement.
	Intro string `json:"intro" yaml:"intro"`
}

// Specializes reports whether the persona specializes in goal g.
func (p Persona) Specializes(g learner.Goal) bool {
	for _, s := range p.Specialties {
		if s == g {
			return true
		}
	}
	return false
}

// Built-in persona IDs.
const (
	FriendlyTutor       = "friendly_tutor"
	GrammarCoach        = "grammar_coach"
	ConversationPartner = "conversation_partner"
	VocabularyGuide     = "vocabulary_guide"
	ConfidenceCoach     = "confidence_coach"
)

// Catalog is an ordered set of personas. Earlier personas win ties when
// several specialize in the same goal.
type Catalog []Persona

// DefaultCatalog returns the built-in personas.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			ID:          FriendlyTutor,
			Name:        "Maya",
			Style:       "friendly",
			Specialties: []learner.Goal{learner.GoalConversation},
			Intro:       "keeps things relaxed and chatty",
		},
		{
			ID:          GrammarCoach,
			Name:        "Professor Lang",
			Style:       "strict",
			Specialties: []learner.Goal{learner.GoalGrammar},
			Intro:       "will help you tighten up your grammar",
		},
		{
			ID:          ConversationPartner,
			Name:        "Sam",
			Style:       "conversational",
			Specialties: []learner.Goal{learner.GoalFluency, learner.GoalPronunciation},
			Intro:       "loves a good back-and-forth to build your fluency",
		},
		{
			ID:          VocabularyGuide,
			Name:        "Iris",
			Style:       "curious",
			Specialties: []learner.Goal{learner.GoalVocabulary},
			Intro:       "collects new words with you",
		},
		{
			ID:          ConfidenceCoach,
			Name:        "Leo",
			Style:       "encouraging",
			Specialties: []learner.Goal{learner.GoalConfidence},
			Intro:       "is here to cheer you on",
		},
	}
}

// Get returns the persona with the given ID.
func (c Catalog) Get(id string) (Persona, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}

// BestFor returns the first persona specializing in g.
func (c Catalog) BestFor(g learner.Goal) (Persona, bool) {
	for _, p := range c {
		if p.Specializes(g) {
			return p, true
		}
	}
	return Persona{}, false
}

// FirstOther returns the first persona whose ID is not in exclude.
func (c Catalog) FirstOther(exclude ...string) (Persona, bool) {
	for _, p := range c {
		skip := false
		for _, id := range exclude {
			if p.ID == id {
				skip = true
				break
			}
		}
		if !skip {
			return p, true
		}
	}
	return Persona{}, false
}
