package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scriptedWorker struct {
	calls atomic.Int32
	run   func(ctx context.Context, call int32) error
}

func (w *scriptedWorker) Run(ctx context.Context) error {
	return w.run(ctx, w.calls.Add(1))
}

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)
	worker := &scriptedWorker{run: func(ctx context.Context, _ int32) error {
		panic("boom")
	}}

	sup := NewSupervisor(slog.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	go sup.Add(worker).Run(ctx)

	// Waiting for panics and restarts
	time.Sleep(900 * time.Millisecond)

	req.GreaterOrEqual(worker.calls.Load(), int32(2))
}

func TestSupervisor_RestartOnError_Then_Success(t *testing.T) {
	req := require.New(t)
	worker := &scriptedWorker{run: func(ctx context.Context, call int32) error {
		if call < 3 {
			return errors.New("transient failure")
		}
		return nil
	}}

	sup := NewSupervisor(slog.Default())
	done := make(chan struct{})

	go func() {
		sup.Add(worker).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		req.Equal(int32(3), worker.calls.Load())
	case <-time.After(2 * time.Second):
		req.Fail("Supervisor should have stopped after worker success")
	}
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)
	worker := &scriptedWorker{run: func(ctx context.Context, _ int32) error {
		return nil
	}}

	sup := NewSupervisor(slog.Default())
	done := make(chan struct{})

	go func() {
		sup.Add(worker).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		// Supervisor detected a success, returned nil and stopped
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}

	req.Equal(int32(1), worker.calls.Load())
}

func TestSupervisor_Stop_Cancels_Running_Workers(t *testing.T) {
	req := require.New(t)
	worker := &scriptedWorker{run: func(ctx context.Context, _ int32) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	sup := NewSupervisor(slog.Default())
	done := make(chan struct{})

	go func() {
		sup.Add(worker).Run(context.Background())
		close(done)
	}()

	// Let the worker start before stopping it
	time.Sleep(50 * time.Millisecond)
	sup.Stop()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have unblocked after Stop")
	}
}
