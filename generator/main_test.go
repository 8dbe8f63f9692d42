package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dkrayten/newswire/internal/dedupe"
	"github.com/Dkrayten/newswire/internal/generator"
	"github.com/Dkrayten/newswire/internal/models"
)

type stubPublisher struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (s *stubPublisher) Publish(ctx context.Context, rec models.NewsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return err
	}
	return nil
}

func (s *stubPublisher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunLoopSurvivesPublishFailure(t *testing.T) {
	pub := &stubPublisher{errs: []error{errors.New("broker away")}}
	gen := generator.NewWithRand(rand.New(rand.NewSource(1)))
	tracker := dedupe.NewTracker(16, time.Hour)
	rng := rand.New(rand.NewSource(2))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runLoop(ctx, testLogger(), gen, pub, tracker, time.Millisecond, 2*time.Millisecond, rng)
		close(done)
	}()

	// One failed cycle must be followed by further cycles.
	require.Eventually(t, func() bool {
		return pub.callCount() >= 3
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}

func TestRunLoopStopsDuringIntervalSleep(t *testing.T) {
	pub := &stubPublisher{}
	gen := generator.NewWithRand(rand.New(rand.NewSource(3)))
	tracker := dedupe.NewTracker(16, time.Hour)
	rng := rand.New(rand.NewSource(4))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runLoop(ctx, testLogger(), gen, pub, tracker, time.Hour, 2*time.Hour, rng)
		close(done)
	}()

	// Let the first cycle publish, then cancel mid-sleep.
	require.Eventually(t, func() bool {
		return pub.callCount() == 1
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop during interval sleep")
	}

	// No further generate/publish after the shutdown signal.
	require.Equal(t, 1, pub.callCount())
}

func TestRunLoopReturnsImmediatelyOnCancelledContext(t *testing.T) {
	pub := &stubPublisher{}
	gen := generator.NewWithRand(rand.New(rand.NewSource(5)))
	tracker := dedupe.NewTracker(16, time.Hour)
	rng := rand.New(rand.NewSource(6))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runLoop(ctx, testLogger(), gen, pub, tracker, time.Millisecond, time.Millisecond, rng)
	require.Zero(t, pub.callCount())
}

func TestSleepInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		d := sleepInterval(rng, 5*time.Second, 10*time.Second)
		require.GreaterOrEqual(t, d, 5*time.Second)
		require.Less(t, d, 10*time.Second)
	}

	require.Equal(t, time.Second, sleepInterval(rng, time.Second, time.Second))
}
