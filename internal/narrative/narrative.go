// Package narrative turns chat transcripts into shareable text: anonymized
// confession stories for the feed and end-of-shift site reports.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/causewayd/internal/dispatch"
	"github.com/fyrsmithlabs/causewayd/internal/llm"
)

// ErrEmptyTranscript is returned when no conversation was provided.
var ErrEmptyTranscript = errors.New("narrative: transcript is required")

// Storytelling wants a looser temperature than analysis.
const creativeTemperature = 0.8

// Served when the provider fails; the share flow still completes.
const (
	degradedConfession = "İşler biraz karışık... Ama anonim olarak paylaşmak istiyorum."
	degradedReport     = "Rapor şu an hazırlanamadı. Kayıtlar yerinde, daha sonra tekrar dene."
)

const confessionPrompt = `
GÖREV: SOHBETİ "DEDİKODU/STORYTIME" FORMATINA ÇEVİRME

Sana verilen sohbet geçmişini okuyup, tek bir paragraflık, Sürükleyici ve Anonim bir hikaye yazacaksın.

KURALLAR:
1. "Tıpatıp Sohbet Kopyası" YAZMA! Olayın özünü çıkar ve kendi cümlelerinle anlat.
2. ANLATICI DİLİ: "Ben" dili kullan. Sanki yakın arkadaşına dert yanıyorsun.
   - Örnek: "Ya kızlar inanamazsınız, çocuk bana resmen şunu dedi..."
   - Örnek: "1 aydır konuştuğum biri var, her şey harikaydı ama dün..."
3. ANONİMLEŞTİR: İsimler (Ahmet, Ayşe) yerine "Flörtüm", "Eski sevgilim", "O" kullan. Yer/Mekan isimlerini sil.
4. ABSÜRT DETAYLARI VURGULA: Olaydaki gariplikleri ön plana çıkar.
5. FİNALİ SORU İLE BİTİR: Okuyuculara "Sizce ne yapmalıyım?", "Bu normal mi?", "Ben mi abartıyorum?" gibi bir soru sor.
6. Uzunluk: Maksimum 400 karakter (Twitter sığacak kadar kısa ama detaylı).
7. ASLA RÜYA GÖRME: Olmayan olayları uydurma. Sadece sohbette geçen gerçekleri kullan ama süsleyerek anlat.

ÇIKTI FORMATI:
Sadece hikayeyi ver. Tırnak işareti, başlık vs ekleme.
`

const reportPrompt = `
GÖREV: ŞANTİYE VARDİYA RAPORU

Sana verilen şantiye sohbet geçmişini okuyup kısa bir vardiya raporu yazacaksın.

KURALLAR:
1. Profesyonel ama sahadan biri gibi yaz. Resmi evrak dili kullanma.
2. Maddeleri grupla: YAPILAN İŞLER, MALZEME DURUMU, RİSKLER/UYARILAR.
3. Kişi isimlerini yazma; "usta", "ekip", "şef" gibi roller kullan.
4. Sadece sohbette geçen gerçekleri rapora al. Tahmin yürütme.
5. Uzunluk: En fazla 10 satır.

ÇIKTI FORMATI:
Sadece raporu ver. Başlık, tırnak işareti, açıklama ekleme.
`

// Generator produces narrative text from transcripts.
type Generator struct {
	chat   llm.Chatter
	logger *zap.Logger
}

// NewGenerator creates a narrative generator.
func NewGenerator(chat llm.Chatter, logger *zap.Logger) (*Generator, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat client cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{chat: chat, logger: logger}, nil
}

// Confession rewrites the transcript as an anonymous first-person story
// ready for the feed. Provider failure degrades to a stock line.
func (g *Generator) Confession(ctx context.Context, history []dispatch.Turn) (string, error) {
	return g.generate(ctx, confessionPrompt, degradedConfession, history)
}

// Report summarizes a site conversation into a shift report.
func (g *Generator) Report(ctx context.Context, history []dispatch.Turn) (string, error) {
	return g.generate(ctx, reportPrompt, degradedReport, history)
}

func (g *Generator) generate(ctx context.Context, prompt, degraded string, history []dispatch.Turn) (string, error) {
	if len(history) == 0 {
		return "", ErrEmptyTranscript
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: "system", Content: prompt})
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: string(turn.Role), Content: turn.Content})
	}

	content, err := g.chat.Chat(ctx, llm.Request{
		Messages:    messages,
		Temperature: creativeTemperature,
	})
	if err != nil {
		g.logger.Warn("narrative generation failed, serving degraded text", zap.Error(err))
		return degraded, nil
	}

	text := strings.TrimSpace(content)
	if text == "" {
		return degraded, nil
	}
	return text, nil
}
