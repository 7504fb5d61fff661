package dispatch

import (
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/causewayd/internal/persona"
)

// trailingUndefined matches a literal "undefined" token at the end of a
// string, with optional leading punctuation and trailing whitespace. Models
// occasionally echo a template placeholder they failed to substitute.
var trailingUndefined = regexp.MustCompile(`(?i)[!.?,;:\s]*undefined\s*$`)

// Normalize repairs known model output defects and maps the parsed JSON into
// a stable envelope.
//
// Guarantees on the result: Intent and ConfidenceScore are always set, one of
// Insight or Question is set, and ScoreData is synthesized from the persona's
// score configuration when the model omitted it. The trailing-"undefined"
// strip is idempotent.
func Normalize(raw map[string]any, p *persona.Persona, fallbackScore int) Envelope {
	cleaned, _ := stripUndefined(raw).(map[string]any)
	if cleaned == nil {
		cleaned = map[string]any{}
	}

	env := Envelope{
		Intent:          stringField(cleaned, "intent"),
		Insight:         stringPtrField(cleaned, "insight"),
		Question:        stringPtrField(cleaned, "question"),
		ActionTrigger:   stringPtrField(cleaned, "action_trigger"),
		DebateHook:      stringPtrField(cleaned, "debate_hook"),
		IsDebatable:     boolPtrField(cleaned, "is_debatable"),
		Replies:         stringSliceField(cleaned, "replies"),
		ConfidenceScore: intField(cleaned, "confidence_score", fallbackScore),
	}

	if env.Intent == "" {
		env.Intent = IntentVenting
	}
	if env.Insight == nil && env.Question == nil {
		env.Insight = strptr("")
	}

	if sd := scoreDataField(cleaned); sd != nil {
		env.ScoreData = sd
	} else {
		env.ScoreData = &ScoreData{
			Value: env.ConfidenceScore,
			Label: p.Score.Label,
			Color: p.Score.Color,
		}
	}

	return env
}

// stripUndefined recursively removes trailing "undefined" artifacts from
// every string in the value.
func stripUndefined(v any) any {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(trailingUndefined.ReplaceAllString(val, ""))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = stripUndefined(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = stripUndefined(item)
		}
		return out
	default:
		return v
	}
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func stringPtrField(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func boolPtrField(m map[string]any, key string) *bool {
	if b, ok := m[key].(bool); ok {
		return &b
	}
	return nil
}

func intField(m map[string]any, key string, fallback int) int {
	switch n := m[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return fallback
	}
}

func stringSliceField(m map[string]any, key string) []string {
	items, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func scoreDataField(m map[string]any) *ScoreData {
	sd, ok := m["score_data"].(map[string]any)
	if !ok {
		return nil
	}
	return &ScoreData{
		Value: intField(sd, "value", 0),
		Label: stringField(sd, "label"),
		Color: stringField(sd, "color"),
	}
}
