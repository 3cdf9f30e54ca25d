package analysis

import (
	"math"
	"strings"
)

// truncationMarker is appended to any string clamped to its cap.
const truncationMarker = "…"

// degradedSummary replaces the summary when the model reply could not be
// parsed at all.
const degradedSummary = "Nie udało się przetworzyć odpowiedzi modelu. Spróbuj ponownie."

// NormalizeInput carries the decoded-but-untrusted model value together with
// the sizing context needed to enforce the output invariants.
type NormalizeInput struct {
	Value   any
	Limits  Limits
	Caps    Caps
	Overlap float64
	Meta    map[string]string
}

// Normalize coerces an arbitrary decoded value into the guaranteed
// AnalysisResult shape. It never fails: missing or mistyped fields default,
// strings are clamped, list fields are truncated to their exact counts and
// never padded. The model's self-reported fit score is never trusted; the
// match percentage is recomputed from the strengths/gaps ratio and capped
// downward when keyword overlap is low. Normalizing an already-normalized
// result returns it unchanged.
func Normalize(in NormalizeInput) AnalysisResult {
	root := asMap(in.Value)
	fit := asMap(root["dopasowanie"])

	strengths := firstList(root["strengths"], fit["mocne_strony"])
	gaps := firstList(root["gaps"], fit["obszary_do_poprawy"])
	soft := firstList(root["softQuestions"], root["pytania_miekkie"])
	hard := firstList(root["hardQuestions"], root["pytania_techniczne"])

	result := AnalysisResult{
		Summary:       ClampText(firstString(root["summary"], root["podsumowanie"]), in.Caps.Summary),
		Strengths:     normalizeList(strengths, in.Caps.ListItem, maxAssessmentItems),
		Gaps:          normalizeList(gaps, in.Caps.ListItem, maxAssessmentItems),
		SoftQuestions: normalizeList(soft, in.Caps.ListItem, in.Limits.SoftQuestions),
		HardQuestions: normalizeList(hard, in.Caps.ListItem, in.Limits.HardQuestions),
		Meta:          copyMeta(in.Meta),
	}
	result.MatchPercentage = matchPercentage(len(result.Strengths), len(result.Gaps), in.Overlap)
	result.WarningMismatch = in.Overlap < 0.10
	return result
}

// Degraded builds the placeholder result used when recovery failed outright.
// The raw reply, capped in length, is attached for diagnostics.
func Degraded(raw string, caps Caps, meta map[string]string) AnalysisResult {
	out := copyMeta(meta)
	out["degraded"] = "true"
	out["raw_reply"] = capRunes(raw, caps.RawReply)
	return AnalysisResult{
		Summary:         degradedSummary,
		Strengths:       []string{},
		Gaps:            []string{},
		SoftQuestions:   []string{},
		HardQuestions:   []string{},
		MatchPercentage: 0,
		WarningMismatch: false,
		Meta:            out,
	}
}

// ClampText truncates text to capLen runes, appending the truncation marker
// when anything was cut. The clamped form is exactly capLen+1 runes long.
func ClampText(text string, capLen int) string {
	text = strings.TrimSpace(text)
	if capLen <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= capLen {
		return text
	}
	return string(runes[:capLen]) + truncationMarker
}

// matchPercentage derives the 0-100 fit score from the strengths/gaps counts
// and applies the keyword-overlap caps: a reply claiming a great fit for a
// posting sharing almost no vocabulary with the CV is not to be believed.
func matchPercentage(strengths, gaps int, overlap float64) int {
	total := strengths + gaps
	if total == 0 {
		return 0
	}
	pct := int(math.Round(float64(strengths) / float64(total) * 100))
	switch {
	case overlap < 0.10 && pct > 35:
		pct = 35
	case overlap < 0.20 && pct > 50:
		pct = 50
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// normalizeList filters items to non-empty trimmed strings, clamps each to
// itemCap runes and truncates the list to count items, keeping original
// order. It never pads.
func normalizeList(items []string, itemCap, count int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		out = append(out, ClampText(trimmed, itemCap))
	}
	if count >= 0 && len(out) > count {
		out = out[:count]
	}
	return out
}

func asMap(value any) map[string]any {
	if m, ok := value.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func firstString(values ...any) string {
	for _, v := range values {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func firstList(values ...any) []string {
	for _, v := range values {
		if items := stringList(v); items != nil {
			return items
		}
	}
	return nil
}

func stringList(value any) []string {
	switch raw := value.(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}

func copyMeta(meta map[string]string) map[string]string {
	out := make(map[string]string, len(meta)+2)
	for k, v := range meta {
		out[k] = v
	}
	return out
}
