package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/causewayd/internal/llm"
	"github.com/fyrsmithlabs/causewayd/internal/persona"
	"go.uber.org/zap"
)

// smalltalkPrompt answers greetings without dragging the conversation into
// analysis mode.
const smalltalkPrompt = `You are a Chill Guy.
- Speak briefly and coolly.
- Do NOT act like a detective.
- Just reply to the greeting/question naturally.
- Match the user's language (Turkish or English).`

const (
	caseTemperature      = 0.7
	smalltalkTemperature = 0.7
	degradedScore        = 50
)

// guestCTA is the fixed call-to-login string appended to guest-mode teasers.
var guestCTA = map[string]string{
	persona.LocaleTR: "🔒 Tam analizi görmek için giriş yap.",
	persona.LocaleEN: "🔒 Log in to unlock the full analysis.",
}

// GuestCTA returns the fixed call-to-login string for the locale.
func GuestCTA(locale string) string {
	if s, ok := guestCTA[locale]; ok {
		return s
	}
	return guestCTA[persona.LocaleTR]
}

// Executor runs the strategy selected by the router.
type Executor struct {
	chat     llm.Chatter
	personas *persona.Registry
	logger   *zap.Logger
}

// NewExecutor creates an executor over the given chat client and persona
// table.
func NewExecutor(chat llm.Chatter, personas *persona.Registry, logger *zap.Logger) (*Executor, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat client cannot be nil")
	}
	if personas == nil {
		return nil, fmt.Errorf("persona registry cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{chat: chat, personas: personas, logger: logger}, nil
}

// Execute produces the response envelope for the chosen actor.
//
// Provider failures on this path never surface to the caller as errors: the
// envelope degrades to an in-character apology so the client always has
// something to render.
func (e *Executor) Execute(ctx context.Context, decision ActorDecision, req Request) Envelope {
	p := e.personas.Get(req.Persona)

	switch decision.Actor {
	case ActorTrash:
		return Envelope{
			Intent:          IntentTrash,
			Insight:         strptr(p.Deflection(req.Locale)),
			ConfidenceScore: 0,
		}
	case ActorSmalltalk:
		return e.executeSmalltalk(ctx, req, p)
	default:
		return e.executeCase(ctx, req, p)
	}
}

// executeSmalltalk replies to chit-chat with a single zero-history call.
func (e *Executor) executeSmalltalk(ctx context.Context, req Request, p *persona.Persona) Envelope {
	content, err := e.chat.Chat(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: smalltalkPrompt},
			{Role: RoleUser, Content: req.LastUserMessage()},
		},
		Temperature: smalltalkTemperature,
	})
	if err != nil || strings.TrimSpace(content) == "" {
		e.logger.Error("smalltalk call failed", zap.Error(err))
		return e.degraded(p, req.Locale)
	}

	return Envelope{
		Intent:          IntentChitchat,
		Insight:         strptr(content),
		ConfidenceScore: 100,
	}
}

// executeCase runs the substantive path: one call with the full history and
// a system instruction assembled from the persona base prompt, the mood
// addendum, and the turn-budget directive.
func (e *Executor) executeCase(ctx context.Context, req Request, p *persona.Persona) Envelope {
	budget := NewTurnBudget(req.History, p.TurnCap)

	var sb strings.Builder
	sb.WriteString(p.Prompt(req.Locale))
	sb.WriteString(p.MoodAddendum(req.Mood, req.Locale))
	sb.WriteString(turnDirective(budget, req.Mode, req.Locale, p))

	messages := make([]llm.Message, 0, len(req.History)+1)
	messages = append(messages, llm.Message{Role: "system", Content: sb.String()})
	for _, t := range req.History {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}

	content, err := e.chat.Chat(ctx, llm.Request{
		Messages:    messages,
		Temperature: caseTemperature,
		JSONMode:    true,
	})
	if err != nil || strings.TrimSpace(content) == "" {
		e.logger.Error("case call failed",
			zap.Error(err),
			zap.String("persona", string(p.ID)),
			zap.Int("turn", budget.Turn),
		)
		return e.degraded(p, req.Locale)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(llm.StripFences(content)), &raw); err != nil {
		// Non-JSON despite JSON mode: wrap the raw text into the
		// expected field rather than failing the request.
		e.logger.Warn("case call returned non-JSON content", zap.Error(err))
		raw = map[string]any{"insight": content}
	}

	env := Normalize(raw, p, p.Confidence(budget.Turn))

	// Enforce the envelope invariant regardless of what the model chose to
	// fill in: clarifying turns carry a question only, the final turn an
	// insight only.
	if budget.Final {
		env.Question = nil
		if env.Insight == nil {
			env.Insight = strptr("")
		}
	} else if env.Question != nil {
		env.Insight = nil
	}

	return env
}

// degraded is the in-character envelope returned when the provider fails.
func (e *Executor) degraded(p *persona.Persona, locale string) Envelope {
	return Envelope{
		Intent:          IntentVenting,
		Insight:         strptr(p.Apology(locale)),
		ConfidenceScore: degradedScore,
	}
}

// turnDirective builds the clarifying-question or final-verdict instruction.
func turnDirective(budget TurnBudget, mode Mode, locale string, p *persona.Persona) string {
	if !budget.Final {
		return fmt.Sprintf(`

### TURN BUDGET (message %d of %d) ###
- Ask EXACTLY ONE more clarifying question. Put it in the "question" field and set "insight" to null.
- Set "confidence_score" to %d.
- Return only valid JSON with the fields: thought_process, intent, action_trigger, confidence_score, insight, question.`,
			budget.Turn, budget.Cap, p.Confidence(budget.Turn))
	}

	directive := fmt.Sprintf(`

### FINAL TURN (message %d of %d) ###
- You MUST NOT ask any further questions. Set "question" to null.
- Emit the terminal verdict in the "insight" field and set "confidence_score" to 100.
- Decide "is_debatable": true if both sides could have a point, false if right/wrong is clear.
- If debatable, put a short jury question in "debate_hook" (e.g. "Is this a red flag?"); otherwise null.
- Return only valid JSON with the fields: thought_process, intent, action_trigger, confidence_score, insight, question, is_debatable, debate_hook.`,
		budget.Turn, budget.Cap)

	if mode == ModeMember {
		return directive + `
- After the verdict, append one short skeptic twist: a sentence questioning your own verdict and inviting the user to put the case before the jury.`
	}

	// Guest mode: an intentionally truncated teaser.
	return directive + fmt.Sprintf(`
- GUEST MODE: the verdict must be a TEASER. Exactly one vague sentence plus a risk figure. No bullet points, no explicit reasoning, no named tactics. Explicitly say the details are withheld.
- End the insight with this exact sentence: %q`, GuestCTA(locale))
}
