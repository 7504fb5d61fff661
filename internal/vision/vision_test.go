package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// fakeGenerator scripts one Gemini response and records the call.
type fakeGenerator struct {
	text     string
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func newTestAnalyzer(gen *fakeGenerator) *Analyzer {
	return &Analyzer{models: gen, model: DefaultModel, logger: zap.NewNop()}
}

func TestAnalyze(t *testing.T) {
	t.Run("parses structured verdict", func(t *testing.T) {
		gen := &fakeGenerator{text: `{"insight":"DIRECT ANALYSIS OF IMAGE: story beğenisi var.","confidence_score":95,"risk_score":80,"intent":"JUDGMENT"}`}
		a := newTestAnalyzer(gen)

		v, err := a.Analyze(context.Background(), "gs://evidence/shot.png", "persona prompt", "")
		require.NoError(t, err)

		assert.Equal(t, 95, v.ConfidenceScore)
		assert.Equal(t, 80, v.RiskScore)
		assert.Equal(t, "JUDGMENT", v.Intent)
		assert.Contains(t, v.Insight, "story beğenisi")
	})

	t.Run("sends file part and override prompt", func(t *testing.T) {
		gen := &fakeGenerator{text: `{"insight":"ok","confidence_score":95,"risk_score":10}`}
		a := newTestAnalyzer(gen)

		_, err := a.Analyze(context.Background(), "gs://evidence/shot.png", "PERSONA VOICE", "image/jpeg")
		require.NoError(t, err)

		require.Len(t, gen.contents, 1)
		parts := gen.contents[0].Parts
		require.Len(t, parts, 2)
		require.NotNil(t, parts[0].FileData)
		assert.Equal(t, "gs://evidence/shot.png", parts[0].FileData.FileURI)
		assert.Equal(t, "image/jpeg", parts[0].FileData.MIMEType)
		assert.Contains(t, parts[1].Text, "PERSONA VOICE")
		assert.Contains(t, parts[1].Text, "OVERRIDE PROTOCOL")
		require.NotNil(t, gen.config.SystemInstruction)
	})

	t.Run("fenced output is tolerated", func(t *testing.T) {
		gen := &fakeGenerator{text: "```json\n{\"insight\":\"kanıt net\",\"confidence_score\":90,\"risk_score\":70}\n```"}
		a := newTestAnalyzer(gen)

		v, err := a.Analyze(context.Background(), "gs://evidence/shot.png", "", "")
		require.NoError(t, err)
		assert.Equal(t, "kanıt net", v.Insight)
	})

	t.Run("raw text becomes the insight at neutral scores", func(t *testing.T) {
		gen := &fakeGenerator{text: "Bu ekran görüntüsünde bir story beğenisi görüyorum."}
		a := newTestAnalyzer(gen)

		v, err := a.Analyze(context.Background(), "gs://evidence/shot.png", "", "")
		require.NoError(t, err)
		assert.Equal(t, 50, v.ConfidenceScore)
		assert.Equal(t, 50, v.RiskScore)
		assert.Contains(t, v.Insight, "story beğenisi")
	})

	t.Run("missing uri is rejected", func(t *testing.T) {
		a := newTestAnalyzer(&fakeGenerator{})
		_, err := a.Analyze(context.Background(), "", "", "")
		assert.Error(t, err)
	})

	t.Run("model not found maps to sentinel", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("googleapi: Error 404: model not found")}
		a := newTestAnalyzer(gen)

		_, err := a.Analyze(context.Background(), "gs://evidence/shot.png", "", "")
		assert.ErrorIs(t, err, ErrModelNotFound)
	})

	t.Run("other provider errors pass through", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("deadline exceeded")}
		a := newTestAnalyzer(gen)

		_, err := a.Analyze(context.Background(), "gs://evidence/shot.png", "", "")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrModelNotFound)
	})
}
