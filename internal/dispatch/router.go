package dispatch

import (
	"context"
	"encoding/json"

	"github.com/fyrsmithlabs/causewayd/internal/llm"
	"go.uber.org/zap"
)

// routerPrompt maps free text to exactly one actor label. The wire labels
// are kept stable because the model was tuned on them.
const routerPrompt = `You are the CAUSEWAY DIRECTOR. Route the input to the correct Actor.

ACTORS:
1. [ACTOR_TRASH]: Random typing like "asdasd", "123123", empty, or total nonsense without meaning.
2. [ACTOR_FRIEND]: "Naber", "Nasılsın", "How are you", "Wassup", "Kimsin". (Casual Chitchat).
3. [ACTOR_DETECTIVE]: EVERYTHING ELSE. Complaints ("İlişkim kötü"), Stories, Love problems, Venting, Questions.

OUTPUT JSON: {"actor": "ACTOR_TRASH" | "ACTOR_FRIEND" | "ACTOR_DETECTIVE"}`

// routerTemperature is near-deterministic: this is classification, not
// creative output.
const routerTemperature = 0.1

// Router classifies the latest user utterance into an actor.
type Router struct {
	chat   llm.Chatter
	logger *zap.Logger
}

// NewRouter creates a router over the given chat client.
func NewRouter(chat llm.Chatter, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{chat: chat, logger: logger}
}

// wireDecision is the model's JSON output shape.
type wireDecision struct {
	Actor string `json:"actor"`
}

// Classify routes the last user message to an actor with a single
// structured-output call.
//
// Only the last user message is sent; earlier turns are deliberately
// withheld so an analytical conversation cannot drag later small talk into
// the case path (context inertia). Any provider or parse failure fails open
// to ActorCase: under-triggering the substantive path costs more than
// over-triggering it. No retries.
func (r *Router) Classify(ctx context.Context, lastUserMessage string) ActorDecision {
	content, err := r.chat.Chat(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: routerPrompt},
			{Role: RoleUser, Content: lastUserMessage},
		},
		Temperature: routerTemperature,
		JSONMode:    true,
	})
	if err != nil {
		r.logger.Warn("router call failed, defaulting to case", zap.Error(err))
		return ActorDecision{Actor: ActorCase}
	}

	var decision wireDecision
	if err := json.Unmarshal([]byte(llm.StripFences(content)), &decision); err != nil {
		r.logger.Warn("router returned malformed JSON, defaulting to case",
			zap.Error(err),
			zap.String("content", content),
		)
		return ActorDecision{Actor: ActorCase}
	}

	switch decision.Actor {
	case "ACTOR_TRASH":
		return ActorDecision{Actor: ActorTrash}
	case "ACTOR_FRIEND":
		return ActorDecision{Actor: ActorSmalltalk}
	case "ACTOR_DETECTIVE":
		return ActorDecision{Actor: ActorCase}
	default:
		r.logger.Warn("router returned unknown actor, defaulting to case",
			zap.String("actor", decision.Actor),
		)
		return ActorDecision{Actor: ActorCase}
	}
}
