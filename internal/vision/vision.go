// Package vision produces immediate verdicts from uploaded screenshots.
//
// Unlike the chat path, visual evidence skips the clarifying-question
// budget entirely: the image is the evidence, so the model is instructed
// to rule on it in a single call.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/fyrsmithlabs/causewayd/internal/llm"
)

// ErrModelNotFound indicates the configured vision model is unavailable.
var ErrModelNotFound = errors.New("vision: model not found")

// DefaultModel is used when no vision model is configured.
const DefaultModel = "gemini-1.5-flash"

const systemInstruction = "You are an expert image analyst. You MUST analyze the visible text, UI elements, and context in the image provided."

// overridePrompt is appended after the persona prompt. It suspends the
// persona's turn-budget behavior because the screenshot already is the
// full evidence.
const overridePrompt = `
🚧 OVERRIDE PROTOCOL: VISION ANALYSIS 🚧
You are in "Visual Evidence Mode".

CRITICAL RULE BREAK:
- IGNORE any instructions to "Ask a question" or "Wait for more info".
- An image has been provided. This IS the evidence.
- DO NOT ask "What is in the story?". LOOK AT THE IMAGE and tell me.
- Extract every piece of text, time, and detail from the screenshot.
- Provide a FINAL VERDICT immediately based on the visual evidence.

TASK:
1. Describe exactly what is in the screenshot (flirtatious text? story view? like?).
2. Apply the persona's logic to THIS visual evidence.

OUTPUT FORMAT (JSON):
{
    "insight": "DIRECT ANALYSIS OF IMAGE: [What you see] + [Interpretation]. No questions.",
    "confidence_score": 95,
    "risk_score": 80,
    "intent": "JUDGMENT",
    "action_trigger": null
}
`

// Verdict is the vision analysis result.
type Verdict struct {
	Insight         string  `json:"insight"`
	ConfidenceScore int     `json:"confidence_score"`
	RiskScore       int     `json:"risk_score"`
	Intent          string  `json:"intent,omitempty"`
	ActionTrigger   *string `json:"action_trigger,omitempty"`
}

// generator is the slice of the Gemini SDK the analyzer uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Analyzer runs single-shot vision verdicts against Gemini.
type Analyzer struct {
	models generator
	model  string
	logger *zap.Logger
}

// NewAnalyzer creates a vision analyzer from a shared Gemini client.
func NewAnalyzer(client *genai.Client, model string, logger *zap.Logger) (*Analyzer, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client cannot be nil")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{models: client.Models, model: model, logger: logger}, nil
}

// Analyze rules on the image at the given gs:// URI. personaPrompt carries
// the active persona's voice; mimeType defaults to image/png.
func (a *Analyzer) Analyze(ctx context.Context, gsURI, personaPrompt, mimeType string) (Verdict, error) {
	if gsURI == "" {
		return Verdict{}, fmt.Errorf("image uri required")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	parts := []*genai.Part{
		genai.NewPartFromURI(gsURI, mimeType),
		genai.NewPartFromText(buildPrompt(personaPrompt)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	res, err := a.models.GenerateContent(ctx, a.model, contents, cfg)
	if err != nil {
		if isNotFound(err) {
			return Verdict{}, fmt.Errorf("%w: %s", ErrModelNotFound, a.model)
		}
		return Verdict{}, fmt.Errorf("vision generate content: %w", err)
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return Verdict{}, fmt.Errorf("vision returned empty response")
	}

	return parseVerdict(text, a.logger), nil
}

func buildPrompt(personaPrompt string) string {
	if personaPrompt == "" {
		return overridePrompt
	}
	return personaPrompt + "\n" + overridePrompt
}

// parseVerdict decodes the model output, falling back to the raw text as
// the insight when the model ignored the JSON contract.
func parseVerdict(text string, logger *zap.Logger) Verdict {
	clean := llm.StripFences(text)

	var v Verdict
	if err := json.Unmarshal([]byte(clean), &v); err != nil || v.Insight == "" {
		if err != nil {
			logger.Warn("vision output was not valid JSON, using raw text", zap.Error(err))
		}
		return Verdict{
			Insight:         clean,
			ConfidenceScore: 50,
			RiskScore:       50,
		}
	}
	return v
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "404") || strings.Contains(msg, "not found")
}
