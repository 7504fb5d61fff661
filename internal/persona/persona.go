// Package persona defines the response-style bundles selectable by callers:
// the system instruction per locale, mood addenda, the clarifying-question
// budget, and score presentation. The registry is passed explicitly into the
// dispatch executor so tests can swap it out.
package persona

import "fmt"

// ID identifies a persona.
type ID string

// Built-in personas.
const (
	Detective ID = "detective"
	Coach     ID = "coach"
	SiteChief ID = "sitechief"
)

// Locales supported by the prompt tables. Turkish is the fallback when a
// locale key is absent.
const (
	LocaleTR = "tr"
	LocaleEN = "en"

	fallbackLocale = LocaleTR
)

// ScoreConfig controls how the confidence score is presented to the client.
type ScoreConfig struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Persona is a named response-style bundle.
type Persona struct {
	ID             ID
	Name           string
	TurnCap        int                          // clarifying questions allowed before the final verdict
	QuestionScores []int                        // confidence per clarifying turn; final turn is always 100
	Prompts        map[string]string            // locale -> base system instruction
	Moods          map[string]map[string]string // mood -> locale -> addendum
	Score          ScoreConfig
	Deflections    map[string]string // locale -> canned reply for discardable input
	Apologies      map[string]string // locale -> in-character degraded reply
}

// Prompt returns the base system instruction for the locale, falling back to
// Turkish when the locale key is absent.
func (p *Persona) Prompt(locale string) string {
	if s, ok := p.Prompts[locale]; ok {
		return s
	}
	return p.Prompts[fallbackLocale]
}

// MoodAddendum returns the mood-specific instruction for the locale, or empty
// when the persona has no mood table or the mood is unknown.
func (p *Persona) MoodAddendum(mood, locale string) string {
	if p.Moods == nil || mood == "" {
		return ""
	}
	byLocale, ok := p.Moods[mood]
	if !ok {
		return ""
	}
	if s, ok := byLocale[locale]; ok {
		return s
	}
	return byLocale[fallbackLocale]
}

// Confidence returns the confidence score for the given 1-based user turn.
// Turns at or beyond the cap score 100.
func (p *Persona) Confidence(turn int) int {
	if turn >= p.TurnCap || turn > len(p.QuestionScores) {
		return 100
	}
	if turn < 1 {
		turn = 1
	}
	return p.QuestionScores[turn-1]
}

// Deflection returns the canned reply for discardable input.
func (p *Persona) Deflection(locale string) string {
	if s, ok := p.Deflections[locale]; ok {
		return s
	}
	return p.Deflections[fallbackLocale]
}

// Apology returns the in-character degraded reply used when the provider
// fails.
func (p *Persona) Apology(locale string) string {
	if s, ok := p.Apologies[locale]; ok {
		return s
	}
	return p.Apologies[fallbackLocale]
}

// Registry is the persona lookup table.
type Registry struct {
	personas map[ID]*Persona
	fallback ID
}

// NewRegistry builds a registry from the given personas. The first persona is
// the fallback for unknown IDs.
func NewRegistry(personas ...*Persona) (*Registry, error) {
	if len(personas) == 0 {
		return nil, fmt.Errorf("at least one persona required")
	}
	m := make(map[ID]*Persona, len(personas))
	for _, p := range personas {
		if p.TurnCap < 1 {
			return nil, fmt.Errorf("persona %q: turn cap must be >= 1", p.ID)
		}
		if len(p.QuestionScores) < p.TurnCap-1 {
			return nil, fmt.Errorf("persona %q: need %d question scores, got %d", p.ID, p.TurnCap-1, len(p.QuestionScores))
		}
		if _, ok := p.Prompts[fallbackLocale]; !ok {
			return nil, fmt.Errorf("persona %q: missing %s prompt", p.ID, fallbackLocale)
		}
		m[p.ID] = p
	}
	return &Registry{personas: m, fallback: personas[0].ID}, nil
}

// Get returns the persona for id, or the fallback persona when id is unknown.
func (r *Registry) Get(id ID) *Persona {
	if p, ok := r.personas[id]; ok {
		return p
	}
	return r.personas[r.fallback]
}

// Has reports whether id is registered.
func (r *Registry) Has(id ID) bool {
	_, ok := r.personas[id]
	return ok
}
