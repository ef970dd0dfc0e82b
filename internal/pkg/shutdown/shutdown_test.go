package shutdown

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"convertd/internal/pkg/logger"
)

func TestRegister(t *testing.T) {
	mgr := NewManager(logger.Discard(), 5*time.Second)

	mgr.Register("http-server", func(ctx context.Context) error { return nil })

	if len(mgr.steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(mgr.steps))
	}
	if mgr.steps[0].Name != "http-server" {
		t.Errorf("expected step name 'http-server', got %s", mgr.steps[0].Name)
	}
}

func TestDefaultTimeout(t *testing.T) {
	if mgr := NewManager(logger.Discard(), 0); mgr.timeout != 30*time.Second {
		t.Errorf("expected 30s default, got %s", mgr.timeout)
	}
}

func TestShutdownRunsStepsInReverseOrder(t *testing.T) {
	mgr := NewManager(logger.Discard(), 5*time.Second)

	var order []string
	for _, name := range []string{"postgres", "redis", "http-server"} {
		name := name
		mgr.Register(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := mgr.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strings.Join(order, ","); got != "http-server,redis,postgres" {
		t.Errorf("expected reverse order, got %s", got)
	}
}

func TestRegisterSimple(t *testing.T) {
	mgr := NewManager(logger.Discard(), 5*time.Second)

	var called bool
	mgr.RegisterSimple("simple", func() { called = true })

	if err := mgr.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected simple step to be called")
	}
}

func TestShutdownCollectsErrors(t *testing.T) {
	mgr := NewManager(logger.Discard(), 5*time.Second)

	boom := errors.New("close failed")
	var ranAfterFailure bool
	mgr.Register("postgres", func(ctx context.Context) error {
		ranAfterFailure = true
		return nil
	})
	mgr.Register("redis", func(ctx context.Context) error { return boom })

	err := mgr.Shutdown()
	if !errors.Is(err, boom) {
		t.Errorf("expected joined error to contain %v, got %v", boom, err)
	}
	if !strings.Contains(err.Error(), "redis") {
		t.Errorf("expected step name in error, got %v", err)
	}
	if !ranAfterFailure {
		t.Error("expected later steps to run after a failure")
	}
}

func TestShutdownOnce(t *testing.T) {
	mgr := NewManager(logger.Discard(), 5*time.Second)

	var calls atomic.Int32
	mgr.RegisterSimple("count", func() { calls.Add(1) })

	mgr.Shutdown()
	mgr.Shutdown()

	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}

	select {
	case <-mgr.Done():
	case <-time.After(time.Second):
		t.Error("expected done channel to be closed")
	}
}

func TestShutdownTimeout(t *testing.T) {
	mgr := NewManager(logger.Discard(), 100*time.Millisecond)

	var skipped atomic.Bool
	skipped.Store(true)
	mgr.Register("after-slow", func(ctx context.Context) error {
		skipped.Store(false)
		return nil
	})
	mgr.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	err := mgr.Shutdown()

	if time.Since(start) > time.Second {
		t.Errorf("shutdown took too long: %v", time.Since(start))
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if !skipped.Load() {
		t.Error("expected steps after the deadline to be skipped")
	}
}

func TestWaitWithCanceledContext(t *testing.T) {
	mgr := NewManager(logger.Discard(), 5*time.Second)

	var called bool
	mgr.RegisterSimple("step", func() { called = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := mgr.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected step to run")
	}
}
