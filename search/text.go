package search

import "strings"

// Stop words to filter out when tokenizing for keyword matching and
// deduplication
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		// Lowercase and trim punctuation
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))

		// Skip stop words and empty strings
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

func wordSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}

// tokenOverlap returns |intersection| / |smaller set| of the filtered
// token sets of two texts. Returns 0 when either set is empty.
func tokenOverlap(a, b string) float64 {
	setA := wordSet(tokenizeAndFilter(a))
	setB := wordSet(tokenizeAndFilter(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	smaller, larger := setA, setB
	if len(setB) < len(setA) {
		smaller, larger = setB, setA
	}

	intersection := 0
	for token := range smaller {
		if larger[token] {
			intersection++
		}
	}
	return float64(intersection) / float64(len(smaller))
}

// matchFraction returns the fraction of tokens that appear in the
// document, case-insensitively.
func matchFraction(document string, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	docSet := wordSet(tokenizeAndFilter(document))
	lowered := strings.ToLower(document)

	matched := 0
	for _, token := range tokens {
		cleaned := strings.ToLower(strings.TrimSpace(token))
		if cleaned == "" {
			continue
		}
		// Whole-token match against the filtered set first, then a
		// substring check so multi-word keywords still count.
		if docSet[cleaned] || strings.Contains(lowered, cleaned) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}
