package analysis

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = "Jesteś doradcą kariery analizującym dopasowanie CV do ogłoszeń o pracę. " +
	"Odpowiadasz wyłącznie poprawnym JSON-em, bez markdownu i bez komentarzy. " +
	"Wynik musi dokładnie odpowiadać podanemu schematowi."

// PromptInput carries everything the composer folds into one instruction.
type PromptInput struct {
	CVText         string
	PostingText    string
	AdditionalText string
	Industry       string
	Limits         Limits
	Caps           Caps
}

// BuildAnalysisPrompt assembles the instruction-plus-data prompt for the full
// CV analysis. Every constraint the normalizer later enforces is restated
// here to maximize first-pass compliance; compliance is never assumed, so
// recovery and normalization always run regardless.
func BuildAnalysisPrompt(in PromptInput) (system, user string) {
	var b strings.Builder
	b.WriteString("Przeanalizuj poniższe CV względem treści ogłoszeń o pracę.\n\n")
	b.WriteString("Zwróć wyłącznie obiekt JSON o dokładnie tej strukturze:\n")
	fmt.Fprintf(&b, `{
  "podsumowanie": "zwięzła ocena dopasowania, maksymalnie %d znaków",
  "dopasowanie": {
    "mocne_strony": ["konkretna mocna strona kandydata względem ogłoszeń"],
    "obszary_do_poprawy": ["konkretny brak lub obszar do poprawy"]
  },
  "pytania_miekkie": ["pytanie rekrutacyjne o kompetencje miękkie"],
  "pytania_techniczne": ["pytanie rekrutacyjne o kompetencje twarde"]
}
`, in.Caps.Summary)
	b.WriteString("\nWymagania dotyczące formatu:\n")
	fmt.Fprintf(&b, "- \"pytania_miekkie\": dokładnie %d pytań.\n", in.Limits.SoftQuestions)
	fmt.Fprintf(&b, "- \"pytania_techniczne\": dokładnie %d pytań.\n", in.Limits.HardQuestions)
	fmt.Fprintf(&b, "- Każdy element listy: maksymalnie %d znaków.\n", in.Caps.ListItem)
	fmt.Fprintf(&b, "- \"podsumowanie\": maksymalnie %d znaków.\n", in.Caps.Summary)
	b.WriteString("- Żadnego tekstu poza obiektem JSON.\n")

	if industry := strings.TrimSpace(in.Industry); industry != "" {
		fmt.Fprintf(&b, "\nBranża wskazana przez użytkownika: %s\n", industry)
	}
	if extra := strings.TrimSpace(in.AdditionalText); extra != "" {
		fmt.Fprintf(&b, "\nDodatkowy opis od użytkownika:\n%s\n", extra)
	}

	fmt.Fprintf(&b, "\nCV kandydata:\n%s\n", in.CVText)
	fmt.Fprintf(&b, "\nTreść ogłoszeń:\n%s\n", in.PostingText)
	return analysisSystemPrompt, b.String()
}

// BuildQuestionsPrompt assembles the prompt for the questions-only operation.
func BuildQuestionsPrompt(in PromptInput) (system, user string) {
	var b strings.Builder
	b.WriteString("Na podstawie poniższych ogłoszeń o pracę przygotuj pytania rekrutacyjne.\n\n")
	b.WriteString("Zwróć wyłącznie obiekt JSON o dokładnie tej strukturze:\n")
	b.WriteString(`{
  "pytania_miekkie": ["pytanie o kompetencje miękkie"],
  "pytania_techniczne": ["pytanie o kompetencje twarde"]
}
`)
	fmt.Fprintf(&b, "\n- \"pytania_miekkie\": dokładnie %d pytań.\n", in.Limits.SoftQuestions)
	fmt.Fprintf(&b, "- \"pytania_techniczne\": dokładnie %d pytań.\n", in.Limits.HardQuestions)
	fmt.Fprintf(&b, "- Każde pytanie: maksymalnie %d znaków.\n", in.Caps.ListItem)
	b.WriteString("- Żadnego tekstu poza obiektem JSON.\n")

	if industry := strings.TrimSpace(in.Industry); industry != "" {
		fmt.Fprintf(&b, "\nBranża: %s\n", industry)
	}
	fmt.Fprintf(&b, "\nTreść ogłoszeń:\n%s\n", in.PostingText)
	return analysisSystemPrompt, b.String()
}

// BuildJDSummaryPrompt assembles the prompt for the posting-summary
// operation.
func BuildJDSummaryPrompt(in PromptInput) (system, user string) {
	var b strings.Builder
	b.WriteString("Streść poniższe ogłoszenia o pracę.\n\n")
	b.WriteString("Zwróć wyłącznie obiekt JSON o dokładnie tej strukturze:\n")
	fmt.Fprintf(&b, `{
  "podsumowanie": "streszczenie ogłoszeń, maksymalnie %d znaków",
  "wymagania": ["kluczowe wymaganie z ogłoszeń"],
  "slowa_kluczowe": ["słowo kluczowe"]
}
`, in.Caps.Summary)
	fmt.Fprintf(&b, "\n- Każdy element listy: maksymalnie %d znaków.\n", in.Caps.ListItem)
	b.WriteString("- Żadnego tekstu poza obiektem JSON.\n")
	fmt.Fprintf(&b, "\nTreść ogłoszeń:\n%s\n", in.PostingText)
	return analysisSystemPrompt, b.String()
}
