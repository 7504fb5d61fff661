// Package confession produces single-shot verdicts for the anonymous
// confession feed. Verdicts are cached in the row store so a confession
// is only ever analyzed once.
package confession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/causewayd/internal/llm"
	"github.com/fyrsmithlabs/causewayd/internal/store"
)

// ErrEmptyConfession is returned when no confession text was provided.
var ErrEmptyConfession = errors.New("confession: text is required")

const (
	// Verdicts are short punchlines; anything longer is wasted spend.
	maxTokens   = 150
	temperature = 0.7

	// degradedAnalysis is served when both models fail. Shipped as a
	// 200 so the feed never breaks over a provider outage.
	degradedAnalysis = "🤖 Analiz şu anda kullanılamıyor."

	defaultToxicScore = 50
)

const systemPrompt = `Sen 'AskAnaliz' uygulamasının acımasız, biraz alaycı ve gerçekçi AI yorumcususun.
Gelen itirafı analiz et ve şu JSON formatında cevap ver:

{
    "toxicity_score": 0-100 (Ne kadar toksik/kırmızı bayrak var),
    "verdict_title": "Kısa 2-3 kelimelik başlık (Örn: 'Kırmızı Alarm 🚩', 'Klasik Oyun 🎭')",
    "short_comment": "Maksimum 1-2 cümlelik acımasız ama gerçekçi yorum",
    "emoji": "Durumu özetleyen tek emoji"
}

Üslubun: Zeki, biraz alaycı, gerçekçi. İlişki dinamiklerini iyi analiz et.
Manipülasyon, gaslighting, red flag tespit et.`

// Request is one confession to analyze. ConfessionID is optional; when
// set, the verdict is cached against that row.
type Request struct {
	Confession   string `json:"confession"`
	ConfessionID string `json:"confessionId"`
}

// Result is the formatted verdict.
type Result struct {
	Analysis      string `json:"analysis"`
	ToxicityScore int    `json:"toxicity_score,omitempty"`
	VerdictTitle  string `json:"verdict_title,omitempty"`
	Emoji         string `json:"emoji,omitempty"`
	Cached        bool   `json:"cached"`
}

// verdict is the model's wire format.
type verdict struct {
	ToxicityScore int    `json:"toxicity_score"`
	VerdictTitle  string `json:"verdict_title"`
	ShortComment  string `json:"short_comment"`
	Emoji         string `json:"emoji"`
}

// Analyzer runs confession verdicts with caching.
type Analyzer struct {
	chat   llm.Chatter
	store  store.Store
	logger *zap.Logger
}

// NewAnalyzer creates a confession analyzer. chat is expected to carry the
// primary/fallback model pair (llm.Fallback).
func NewAnalyzer(chat llm.Chatter, st store.Store, logger *zap.Logger) (*Analyzer, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat client cannot be nil")
	}
	if st == nil {
		st = store.NoOp{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{chat: chat, store: st, logger: logger}, nil
}

// Analyze returns the verdict for a confession, serving from cache when a
// verdict already exists. Provider failures degrade to a stock analysis
// rather than an error.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Confession) == "" {
		return Result{}, ErrEmptyConfession
	}

	if req.ConfessionID != "" {
		cached, err := a.store.ConfessionAnalysis(ctx, req.ConfessionID)
		if err == nil {
			return Result{Analysis: cached, Cached: true}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			// Cache trouble never blocks a verdict.
			a.logger.Warn("confession cache lookup failed", zap.Error(err))
		}
	}

	raw, err := a.chat.Chat(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Bu itirafı analiz et:\n\n" + req.Confession},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		JSONMode:    true,
	})
	if err != nil {
		a.logger.Error("confession analysis failed on both models", zap.Error(err))
		return Result{Analysis: degradedAnalysis}, nil
	}

	res := format(raw)

	if req.ConfessionID != "" {
		if err := a.store.SaveConfessionAnalysis(ctx, req.ConfessionID, res.Analysis, res.ToxicityScore); err != nil {
			a.logger.Warn("failed to cache confession verdict",
				zap.String("confession_id", req.ConfessionID),
				zap.Error(err),
			)
		}
	}

	return res, nil
}

// format turns the model's JSON into the "emoji title\n\ncomment" string
// the feed renders. Non-JSON output is served as-is.
func format(raw string) Result {
	clean := llm.StripFences(raw)

	var v verdict
	if err := json.Unmarshal([]byte(clean), &v); err != nil || v.ShortComment == "" {
		return Result{Analysis: clean, ToxicityScore: defaultToxicScore}
	}

	analysis := v.ShortComment
	if v.Emoji != "" {
		analysis = strings.TrimSpace(v.Emoji+" "+v.VerdictTitle) + "\n\n" + v.ShortComment
	}

	score := v.ToxicityScore
	if score == 0 {
		score = defaultToxicScore
	}

	return Result{
		Analysis:      analysis,
		ToxicityScore: score,
		VerdictTitle:  v.VerdictTitle,
		Emoji:         v.Emoji,
	}
}
