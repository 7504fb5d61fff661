// Package dispatch implements the conversation dispatch protocol: a
// stateless decision procedure that routes the latest user utterance to a
// response strategy, tracks the clarifying-question budget, and produces a
// normalized envelope for the client to render.
//
// Nothing here survives a request. Turn counts and the
// awaiting-context/final-verdict state are recomputed from the submitted
// history on every call; durable storage of turns belongs to the caller.
package dispatch

import (
	"errors"

	"github.com/fyrsmithlabs/causewayd/internal/persona"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single conversation turn as submitted by the caller.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Mode gates how much of the final verdict is revealed.
type Mode string

// Modes.
const (
	ModeGuest  Mode = "guest"
	ModeMember Mode = "member"
)

// Request is one dispatch call.
type Request struct {
	History []Turn     `json:"messages"`
	Persona persona.ID `json:"persona"`
	Locale  string     `json:"language"`
	Mood    string     `json:"mood,omitempty"`
	Mode    Mode       `json:"mode,omitempty"`
}

// Input validation errors, mapped to 4xx at the HTTP boundary.
var (
	ErrEmptyHistory    = errors.New("messages are required")
	ErrLastTurnNotUser = errors.New("last message must be from the user")
)

// Validate checks the request invariants: non-empty history whose last entry
// is a user turn.
func (r *Request) Validate() error {
	if len(r.History) == 0 {
		return ErrEmptyHistory
	}
	if r.History[len(r.History)-1].Role != RoleUser {
		return ErrLastTurnNotUser
	}
	return nil
}

// LastUserMessage returns the content of the trailing user turn.
func (r *Request) LastUserMessage() string {
	return r.History[len(r.History)-1].Content
}

// Actor is the router's classification of the current turn.
type Actor string

// Actors.
const (
	ActorTrash     Actor = "trash"     // noise, gibberish, empty
	ActorSmalltalk Actor = "smalltalk" // greetings, chit-chat
	ActorCase      Actor = "case"      // everything else
)

// ActorDecision is the router output.
type ActorDecision struct {
	Actor Actor `json:"actor"`
}

// Intents carried in the envelope.
const (
	IntentTrash    = "TRASH"
	IntentChitchat = "CHITCHAT"
	IntentVenting  = "VENTING"
)

// ScoreData is the presentation of the confidence score.
type ScoreData struct {
	Value int    `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Envelope is the normalized response contract returned to the caller.
// Exactly one of Insight or Question is set on non-final turns; Question is
// always nil on the final turn.
type Envelope struct {
	Intent          string     `json:"intent"`
	Insight         *string    `json:"insight"`
	Question        *string    `json:"question"`
	ConfidenceScore int        `json:"confidence_score"`
	ActionTrigger   *string    `json:"action_trigger,omitempty"`
	ScoreData       *ScoreData `json:"score_data,omitempty"`
	IsDebatable     *bool      `json:"is_debatable,omitempty"`
	DebateHook      *string    `json:"debate_hook,omitempty"`
	Replies         []string   `json:"replies,omitempty"`
}

// TurnBudget is the clarifying-question state for the active persona,
// computed once per request from the submitted history.
type TurnBudget struct {
	Turn  int  // 1-based count of user turns, including the current one
	Cap   int  // persona's clarifying-question budget
	Final bool // cap reached: the executor must emit a terminal verdict
}

// NewTurnBudget derives the budget from history and the persona cap.
func NewTurnBudget(history []Turn, cap int) TurnBudget {
	turn := 0
	for _, t := range history {
		if t.Role == RoleUser {
			turn++
		}
	}
	return TurnBudget{
		Turn:  turn,
		Cap:   cap,
		Final: turn >= cap,
	}
}

func strptr(s string) *string { return &s }
