package reembed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Reports(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)
	tracker.Start()

	tracker.Update(3)
	assert.Empty(t, buf.String(), "below interval, nothing reported yet")

	tracker.Update(5)
	assert.Contains(t, buf.String(), "5/10")

	tracker.Finish()
	output := buf.String()
	assert.Contains(t, output, "10/10")
	assert.Contains(t, output, "100.0%")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 4, 1)
	tracker.Start()

	tracker.Update(100)
	assert.Contains(t, buf.String(), "4/4")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Update(5)
	tracker.Finish()
	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_FinishEndsLine(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 2, 1)
	tracker.Start()
	tracker.Update(2)
	tracker.Finish()

	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}
