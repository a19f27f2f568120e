package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noveee/SinisterBot/internal/domain"
)

type fakeRunner struct {
	ran chan struct{}
	err error
}

func (f *fakeRunner) Run(_ context.Context) (*domain.CycleStats, error) {
	f.ran <- struct{}{}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CycleStats{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestScheduler_RunsImmediatelyThenOnTicks(t *testing.T) {
	runner := &fakeRunner{ran: make(chan struct{}, 16)}
	sched := New(runner, 20*time.Millisecond, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	// One run up front, then at least one more from the ticker.
	for i := 0; i < 2; i++ {
		select {
		case <-runner.ran:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for cycle run")
		}
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestScheduler_CycleErrorDoesNotStopLoop(t *testing.T) {
	runner := &fakeRunner{ran: make(chan struct{}, 16), err: errors.New("cycle blew up")}
	sched := New(runner, 20*time.Millisecond, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	// The loop keeps ticking past a failed cycle.
	for i := 0; i < 3; i++ {
		select {
		case <-runner.ran:
		case <-time.After(2 * time.Second):
			t.Fatal("scheduler stopped after a failed cycle")
		}
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestScheduler_CancelInterruptsSleepPromptly(t *testing.T) {
	runner := &fakeRunner{ran: make(chan struct{}, 1)}
	sched := New(runner, time.Hour, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	<-runner.ran
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop promptly on cancellation")
	}
}
