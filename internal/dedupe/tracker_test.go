package dedupe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dkrayten/newswire/internal/dedupe"
)

func TestObserveReportsCollision(t *testing.T) {
	tr := dedupe.NewTracker(100, time.Hour)

	require.False(t, tr.Observe(42))
	require.True(t, tr.Observe(42))
	require.False(t, tr.Observe(43))
	require.True(t, tr.Observe(43))
}

func TestObserveEvictsBeyondCapacity(t *testing.T) {
	tr := dedupe.NewTracker(2, time.Hour)

	require.False(t, tr.Observe(1))
	require.False(t, tr.Observe(2))
	require.False(t, tr.Observe(3)) // evicts 1

	require.False(t, tr.Observe(1))
	require.True(t, tr.Observe(3))
}

func TestObserveExpiresAfterTTL(t *testing.T) {
	tr := dedupe.NewTracker(10, 10*time.Millisecond)

	require.False(t, tr.Observe(7))
	time.Sleep(20 * time.Millisecond)
	require.False(t, tr.Observe(7))
}
