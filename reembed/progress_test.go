package reembed

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	tracker.Update(5)
	assert.Empty(t, buf.String(), "below interval, no report yet")

	tracker.Update(10)
	assert.Contains(t, buf.String(), "10/100")
}

func TestProgressTracker_Increment(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 20, 10)

	tracker.Start()
	tracker.Increment(6)
	tracker.Increment(6)

	assert.Contains(t, buf.String(), "12/20")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Start()
	tracker.Update(50)

	assert.Contains(t, buf.String(), "10/10")
	assert.Contains(t, buf.String(), "100.0%")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 7, 100)

	tracker.Start()
	tracker.Update(3)
	tracker.Finish()

	assert.Contains(t, buf.String(), "7/7")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Update(5)
	tracker.Finish()

	assert.Empty(t, buf.String(), "updates before Start should be ignored")
	assert.Zero(t, tracker.Elapsed())
}
