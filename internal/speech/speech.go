// Package speech transcribes voice notes so they can flow through the
// same dispatch path as typed messages.
package speech

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is used when no speech model is configured.
const DefaultModel = "gemini-1.5-flash"

// Voice notes come from the browser recorder as webm/opus.
const defaultMIMEType = "audio/webm"

// The apps are Turkish-first with occasional English; the instruction
// pins both so the model does not translate.
const transcribeInstruction = `Transcribe this audio recording verbatim.
The speaker is most likely speaking Turkish, possibly English.
Return ONLY the transcribed text. No commentary, no labels, no translation.
If nothing intelligible was said, return an empty string.`

// generator is the slice of the Gemini SDK the transcriber uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Transcriber converts recorded audio to text via Gemini.
type Transcriber struct {
	models generator
	model  string
	logger *zap.Logger
}

// NewTranscriber creates a transcriber from a shared Gemini client.
func NewTranscriber(client *genai.Client, model string, logger *zap.Logger) (*Transcriber, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client cannot be nil")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcriber{models: client.Models, model: model, logger: logger}, nil
}

// Transcribe returns the spoken text of the recording. An empty result
// means nothing intelligible was recognized; callers treat that as a
// client error, not a provider failure.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio data required")
	}
	if mimeType == "" {
		mimeType = defaultMIMEType
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(audio, mimeType),
		genai.NewPartFromText(transcribeInstruction),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	res, err := t.models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("speech generate content: %w", err)
	}

	text := strings.TrimSpace(res.Text())
	t.logger.Debug("transcribed audio",
		zap.Int("audio_bytes", len(audio)),
		zap.Int("transcript_chars", len(text)),
	)
	return text, nil
}
