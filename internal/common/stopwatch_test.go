package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStopwatchElapsed(t *testing.T) {
	sw := StartStopwatch()

	time.Sleep(10 * time.Millisecond)

	elapsed := sw.Elapsed()
	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
	assert.Less(t, elapsed, 10*time.Second)
}

func TestStopwatchElapsedMS(t *testing.T) {
	sw := StartStopwatch()

	time.Sleep(5 * time.Millisecond)

	ms := sw.ElapsedMS()
	assert.GreaterOrEqual(t, ms, 5.0)
	assert.Less(t, ms, 10000.0)
}

func TestStopwatchKeepsRunning(t *testing.T) {
	sw := StartStopwatch()
	first := sw.Elapsed()

	time.Sleep(2 * time.Millisecond)

	assert.Greater(t, sw.Elapsed(), first)
}
