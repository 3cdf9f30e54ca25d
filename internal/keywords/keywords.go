// Package keywords provides tokenization, top-frequency term extraction and
// Jaccard overlap for CV/posting comparison. All functions are pure.
package keywords

import (
	"sort"
	"strings"
	"unicode"
)

const minTokenLen = 3

// stopwords covers common Polish function words plus the English ones that
// leak into Polish job postings.
var stopwords = map[string]struct{}{
	// Polish
	"oraz": {}, "albo": {}, "lub": {}, "ale": {}, "jest": {}, "być": {},
	"się": {}, "dla": {}, "nie": {}, "aby": {}, "żeby": {}, "przez": {},
	"jako": {}, "tym": {}, "tego": {}, "tej": {}, "ten": {}, "taki": {},
	"które": {}, "który": {}, "która": {}, "których": {}, "czy": {},
	"przy": {}, "pod": {}, "nad": {}, "bez": {}, "jak": {}, "więc": {},
	"będzie": {}, "mamy": {}, "masz": {}, "nasz": {}, "nasza": {},
	"nasze": {}, "twoje": {}, "jego": {}, "ich": {}, "tylko": {},
	"także": {}, "również": {}, "może": {}, "bardzo": {}, "inne": {},
	"praca": {}, "pracy": {}, "firma": {}, "firmy": {}, "firmie": {},
	"osoba": {}, "osoby": {}, "roku": {}, "lat": {}, "dni": {},
	// English
	"the": {}, "and": {}, "for": {}, "you": {}, "are": {}, "with": {},
	"will": {}, "our": {}, "your": {}, "have": {}, "has": {}, "this": {},
	"that": {}, "from": {}, "not": {}, "can": {}, "all": {}, "work": {},
	"who": {}, "what": {}, "been": {}, "were": {}, "they": {}, "them": {},
}

// Tokenize lower-cases text and splits on non-letter/digit boundaries,
// dropping short tokens and stopwords. Token order follows first appearance.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		token := current.String()
		current.Reset()
		if len([]rune(token)) < minTokenLen {
			return
		}
		if _, ok := stopwords[token]; ok {
			return
		}
		tokens = append(tokens, token)
	}
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// TopTerms returns the n most frequent tokens in descending frequency order.
// Ties are broken by first-encountered order.
func TopTerms(text string, n int) []string {
	tokens := Tokenize(text)
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, token := range tokens {
		if _, ok := firstSeen[token]; !ok {
			firstSeen[token] = i
		}
		counts[token]++
	}

	unique := make([]string, 0, len(counts))
	for token := range counts {
		unique = append(unique, token)
	}
	sort.SliceStable(unique, func(i, j int) bool {
		if counts[unique[i]] != counts[unique[j]] {
			return counts[unique[i]] > counts[unique[j]]
		}
		return firstSeen[unique[i]] < firstSeen[unique[j]]
	})

	if n > 0 && len(unique) > n {
		unique = unique[:n]
	}
	return unique
}

// Jaccard computes the Jaccard index of two term lists treated as sets.
// An empty union yields 0 via a union-size floor of 1.
func Jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union < 1 {
		union = 1
	}
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
