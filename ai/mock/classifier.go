package mock

import (
	"context"
	"strings"
	"unicode"

	"github.com/poiesic/askit/ai"
)

// MockClassifier is a test double for ai.Classifier.
// It allows custom behavior injection via function fields.
type MockClassifier struct {
	// ClassifyQueryFunc is called by ClassifyQuery if set.
	// If nil, uses default heuristic classification.
	ClassifyQueryFunc func(ctx context.Context, query string) (*ai.QueryClassification, error)

	callCount int
}

// NewMockClassifier creates a mock classifier with default heuristic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// Interrogative and stop words excluded from entity/keyword extraction.
var classifierStopWords = map[string]bool{
	"what": true, "who": true, "where": true, "when": true, "why": true,
	"how": true, "the": true, "a": true, "an": true, "and": true, "or": true,
	"is": true, "are": true, "was": true, "were": true, "did": true,
	"does": true, "do": true, "in": true, "on": true, "of": true, "to": true,
	"for": true, "with": true, "about": true, "show": true, "find": true,
	"tell": true, "me": true, "across": true, "say": true, "said": true,
}

// ClassifyQuery performs a simple heuristic classification.
// Default behavior: capitalized non-leading words become entities, the
// remaining meaningful words become keywords, and the query type is
// FACTUAL_LOOKUP.
func (m *MockClassifier) ClassifyQuery(ctx context.Context, query string) (*ai.QueryClassification, error) {
	m.callCount++

	if m.ClassifyQueryFunc != nil {
		return m.ClassifyQueryFunc(ctx, query)
	}

	classification := &ai.QueryClassification{
		QueryType: "FACTUAL_LOOKUP",
	}

	words := strings.Fields(query)
	var entity []string
	flushEntity := func() {
		if len(entity) > 0 {
			classification.Entities = append(classification.Entities, strings.Join(entity, " "))
			entity = nil
		}
	}

	for i, word := range words {
		cleaned := strings.Trim(word, ".,!?;:\"'()[]{}")
		if cleaned == "" {
			flushEntity()
			continue
		}
		lower := strings.ToLower(cleaned)

		// Capitalized words after the first are treated as entity name parts.
		first := []rune(cleaned)[0]
		if i > 0 && unicode.IsUpper(first) && !classifierStopWords[lower] {
			entity = append(entity, cleaned)
			continue
		}
		flushEntity()

		if !classifierStopWords[lower] && len(lower) > 2 {
			classification.Keywords = append(classification.Keywords, lower)
		}
	}
	flushEntity()

	return classification, nil
}

// CallCount returns the number of times ClassifyQuery was called.
func (m *MockClassifier) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockClassifier) Reset() {
	m.callCount = 0
	m.ClassifyQueryFunc = nil
}
