package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/askit/ai/mock"
	"github.com/poiesic/askit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedResult(text string, score float32) *core.SearchResult {
	return &core.SearchResult{
		Source:        core.SourceVector,
		Text:          text,
		WeightedScore: score,
		Modality:      core.ModalityText,
		FileName:      "notes.txt",
	}
}

func TestSynthesizeCitations(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.GenerateTextFunc = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		// Cites 2 before 1, repeats 1, and cites a passage that does
		// not exist
		return "The launch slipped [Source 2] because of weather [Source 1]. See also [Source 1] and [Source 9].", nil
	}

	synthesizer := NewSynthesizer(generator, nil)
	results := []*core.SearchResult{
		rankedResult("Weather delayed everything in March.", 0.9),
		rankedResult("The launch moved to April.", 0.8),
	}

	answer, cited, err := synthesizer.Synthesize(context.Background(), "when is the launch", results)
	require.NoError(t, err)
	assert.Contains(t, answer, "[Source 2]")

	// Citation order, no duplicates, out-of-range dropped
	require.Len(t, cited, 2)
	assert.Equal(t, "The launch moved to April.", cited[0].Text)
	assert.Equal(t, "Weather delayed everything in March.", cited[1].Text)
}

func TestSynthesizePromptContainsSources(t *testing.T) {
	var captured string
	generator := mock.NewMockGenerator()
	generator.GenerateTextFunc = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		captured = userPrompt
		return "Answer [Source 1].", nil
	}

	synthesizer := NewSynthesizer(generator, nil)
	results := []*core.SearchResult{rankedResult("Weather delayed everything.", 0.9)}

	_, _, err := synthesizer.Synthesize(context.Background(), "why the delay", results)
	require.NoError(t, err)

	assert.Contains(t, captured, "[Source 1]")
	assert.Contains(t, captured, "Weather delayed everything.")
	assert.Contains(t, captured, "why the delay")
	assert.Contains(t, captured, "notes.txt")
}

func TestBuildContextBudget(t *testing.T) {
	synthesizer := NewSynthesizer(mock.NewMockGenerator(), nil)
	synthesizer.budget = 60

	long := strings.Repeat("filler words to spend the token budget quickly ", 10)
	results := []*core.SearchResult{
		rankedResult(long, 0.9),
		rankedResult(long, 0.8),
		rankedResult(long, 0.7),
	}

	_, included := synthesizer.buildContext(results)
	require.NotEmpty(t, included, "top result always makes it in")
	assert.Less(t, len(included), len(results), "budget drops the tail")
	assert.Equal(t, float32(0.9), included[0].WeightedScore)
}

func TestFlagsInsufficiency(t *testing.T) {
	assert.True(t, flagsInsufficiency("There is NOT ENOUGH INFORMATION to answer."))
	assert.False(t, flagsInsufficiency("The launch is in April [Source 1]."))
}
