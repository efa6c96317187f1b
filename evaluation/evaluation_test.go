package evaluation

import (
	"testing"
	"time"

	"github.com/poiesic/askit/core"
	"github.com/stretchr/testify/assert"
)

func TestThresholdsEvaluate(t *testing.T) {
	thresholds := DefaultThresholds()

	cases := []struct {
		name       string
		confidence float32
		latency    time.Duration
		passing    bool
	}{
		{"fast and confident", 0.8, time.Second, true},
		{"at the bar", 0.7, 5 * time.Second, true},
		{"too slow", 0.9, 6 * time.Second, false},
		{"low confidence", 0.5, time.Second, false},
		{"zero confidence", 0.0, time.Second, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			record := &Record{Confidence: c.confidence, TotalLatency: c.latency}
			assert.Equal(t, c.passing, thresholds.Evaluate(record))
		})
	}
}

func TestNewRecord(t *testing.T) {
	record := NewRecord(core.QueryTypeFactualLookup, 0.85,
		800*time.Millisecond, 300*time.Millisecond, 400*time.Millisecond,
		5, DefaultThresholds())

	assert.NotEqual(t, [16]byte{}, [16]byte(record.RequestId))
	assert.Equal(t, core.QueryTypeFactualLookup, record.QueryType)
	assert.True(t, record.Passing)
	assert.False(t, record.Timestamp.IsZero())

	// Distinct requests get distinct ids
	other := NewRecord(core.QueryTypeFactualLookup, 0.85,
		800*time.Millisecond, 300*time.Millisecond, 400*time.Millisecond,
		5, DefaultThresholds())
	assert.NotEqual(t, record.RequestId, other.RequestId)
}
