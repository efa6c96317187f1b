package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/ai/mock"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/evaluation"
	"github.com/poiesic/askit/search"
	badgerstore "github.com/poiesic/askit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProcessor wires a processor over in-memory storage and mock AI
// services. The embedder returns a fixed vector so stored chunks with
// the same vector are perfect matches.
func newTestProcessor(t *testing.T, provider ai.AIProvider, opts ...Option) (*Processor, *badgerstore.Backend) {
	t.Helper()

	chunkRepo, graphRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)

	orchestrator, err := search.NewOrchestrator(chunkRepo, graphRepo, provider)
	require.NoError(t, err)

	processor, err := NewProcessor(orchestrator, provider, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		orchestrator.Close()
		backend.Close()
	})
	return processor, backend
}

func answeringProvider(answer string) ai.AIProvider {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	classifier := mock.NewMockClassifier()
	classifier.ClassifyQueryFunc = func(ctx context.Context, query string) (*ai.QueryClassification, error) {
		return &ai.QueryClassification{QueryType: "FACTUAL_LOOKUP", Keywords: []string{"launch"}}, nil
	}

	generator := mock.NewMockGenerator()
	generator.GenerateTextFunc = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		if systemPrompt == rewriteSystemPrompt {
			return userPrompt, nil
		}
		return answer, nil
	}

	return mock.NewMockProviderWithServices(embedder, classifier, generator)
}

func seedLaunchChunk(t *testing.T, backend *badgerstore.Backend) {
	t.Helper()
	chunkRepo := badgerstore.NewChunkRepository(backend)
	_, err := chunkRepo.AddChunks(context.Background(), &core.Chunk{
		FileId: "plan.txt", FileName: "plan.txt", ChunkIndex: 0,
		Modality: core.ModalityText,
		Text:     "The launch is scheduled for April.",
		Vector:   []float32{1, 0, 0},
	})
	require.NoError(t, err)
}

func TestProcessAnswersWithCitations(t *testing.T) {
	processor, backend := newTestProcessor(t,
		answeringProvider("The launch is in April [Source 1]."))
	seedLaunchChunk(t, backend)

	answer, err := processor.Process(context.Background(), "When is the launch?")
	require.NoError(t, err)

	assert.Equal(t, core.QueryTypeFactualLookup, answer.QueryType)
	assert.Contains(t, answer.Text, "April")
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "plan.txt", answer.Sources[0].FileName)
	assert.Greater(t, answer.Confidence, float32(0))
}

func TestProcessInvalidQuery(t *testing.T) {
	processor, _ := newTestProcessor(t, answeringProvider("irrelevant"))

	_, err := processor.Process(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidQuery))

	_, err = processor.Process(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrQueryEmpty))
}

func TestProcessNoResults(t *testing.T) {
	// Empty corpus: a well-formed query still gets an Answer
	processor, _ := newTestProcessor(t, answeringProvider("should not be called"))

	answer, err := processor.Process(context.Background(), "When is the launch?")
	require.NoError(t, err)

	assert.Equal(t, float32(0), answer.Confidence)
	assert.Equal(t, noAnswerText, answer.Text)
	assert.Contains(t, answer.Warning, "no results found")
	assert.Empty(t, answer.Sources)
}

func TestProcessAllStrategiesUnavailable(t *testing.T) {
	// Classifier and embedder both down: the only enabled strategy is
	// vector, and it fails. The Answer must still name it.
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}
	classifier := mock.NewMockClassifier()
	classifier.ClassifyQueryFunc = func(ctx context.Context, query string) (*ai.QueryClassification, error) {
		return nil, errors.New("classifier down")
	}
	provider := mock.NewMockProviderWithServices(embedder, classifier, mock.NewMockGenerator())

	processor, backend := newTestProcessor(t, provider)
	seedLaunchChunk(t, backend)

	answer, err := processor.Process(context.Background(), "When is the launch?")
	require.NoError(t, err)

	assert.Equal(t, float32(0), answer.Confidence)
	assert.Equal(t, noAnswerText, answer.Text)
	assert.Contains(t, answer.Warning, "retrieval strategies unavailable: vector")
	assert.Contains(t, answer.Warning, "no results found")
}

func TestProcessGenerationFailure(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	classifier := mock.NewMockClassifier()
	classifier.ClassifyQueryFunc = func(ctx context.Context, query string) (*ai.QueryClassification, error) {
		return &ai.QueryClassification{QueryType: "FACTUAL_LOOKUP"}, nil
	}
	generator := mock.NewMockGenerator()
	generator.GenerateTextFunc = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "", errors.New("generator down")
	}
	provider := mock.NewMockProviderWithServices(embedder, classifier, generator)

	processor, backend := newTestProcessor(t, provider)
	seedLaunchChunk(t, backend)

	answer, err := processor.Process(context.Background(), "When is the launch?")
	require.NoError(t, err, "generation failure degrades, never fails")

	assert.Equal(t, float32(0), answer.Confidence)
	assert.Contains(t, answer.Warning, "answer generation failed")
}

func TestProcessInsufficientContext(t *testing.T) {
	processor, backend := newTestProcessor(t,
		answeringProvider("There is not enough information to answer this [Source 1]."))
	seedLaunchChunk(t, backend)

	answer, err := processor.Process(context.Background(), "What color is the rocket?")
	require.NoError(t, err)

	assert.LessOrEqual(t, answer.Confidence, float32(0.3))
}

func TestProcessRecordsEvaluation(t *testing.T) {
	recorder := &capturingRecorder{}
	processor, backend := newTestProcessor(t,
		answeringProvider("The launch is in April [Source 1]."),
		WithRecorder(recorder))
	seedLaunchChunk(t, backend)

	_, err := processor.Process(context.Background(), "When is the launch?")
	require.NoError(t, err)

	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, core.QueryTypeFactualLookup, record.QueryType)
	assert.NotZero(t, record.TotalLatency)
	assert.Equal(t, 1, record.ResultCount)
}

type capturingRecorder struct {
	records []*evaluation.Record
}

var _ evaluation.Recorder = (*capturingRecorder)(nil)

func (r *capturingRecorder) Record(record *evaluation.Record) {
	r.records = append(r.records, record)
}
