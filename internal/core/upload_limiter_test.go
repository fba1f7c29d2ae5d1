package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestUploadLimiter_AcquireRelease(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	ctx := context.Background()

	steps := []struct {
		name          string
		op            func() error
		wantActive    int
		wantAvailable int
	}{
		{"first acquire", func() error { return limiter.Acquire(ctx) }, 1, 1},
		{"second acquire", func() error { return limiter.Acquire(ctx) }, 2, 0},
		{"release", func() error { limiter.Release(); return nil }, 1, 1},
		{"release last", func() error { limiter.Release(); return nil }, 0, 2},
	}

	for _, step := range steps {
		if err := step.op(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if got := limiter.ActiveCount(); got != step.wantActive {
			t.Errorf("%s: ActiveCount = %d, want %d", step.name, got, step.wantActive)
		}
		if got := limiter.Available(); got != step.wantAvailable {
			t.Errorf("%s: Available = %d, want %d", step.name, got, step.wantAvailable)
		}
	}
}

func TestUploadLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewUploadLimiter(1, 80*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if err != ErrTooManyUploads {
		t.Fatalf("expected ErrTooManyUploads, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 70*time.Millisecond {
		t.Errorf("gave up after %v, before the wait limit", elapsed)
	}
	if got := MapError(err).Code; got != "UPL001" {
		t.Errorf("MapError code = %q, want UPL001", got)
	}
}

func TestUploadLimiter_NeverExceedsMax(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewUploadLimiter(maxConcurrent, time.Second)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		maxObserved int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			if n := limiter.ActiveCount(); n > maxObserved {
				maxObserved = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if maxObserved > maxConcurrent {
		t.Errorf("observed %d concurrent uploads, max %d", maxObserved, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestUploadLimiter_TryAcquire(t *testing.T) {
	limiter := NewUploadLimiter(1, time.Second)

	if !limiter.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if limiter.TryAcquire() {
		t.Error("second TryAcquire should fail")
	}
	limiter.Release()
	if !limiter.TryAcquire() {
		t.Error("TryAcquire after Release should succeed")
	}
	limiter.Release()
}

func TestUploadLimiter_CallerCancellation(t *testing.T) {
	limiter := NewUploadLimiter(1, 5*time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- limiter.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancellation")
	}
}

func TestUploadLimiter_WaitForDrain(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	ctx := context.Background()
	_ = limiter.Acquire(ctx)
	_ = limiter.Acquire(ctx)

	done := make(chan error, 1)
	go func() { done <- limiter.WaitForDrain(context.Background()) }()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
			t.Fatalf("WaitForDrain returned with %d uploads active", limiter.ActiveCount())
		case <-time.After(30 * time.Millisecond):
		}
		limiter.Release()
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not complete after all released")
	}
}

func TestUploadLimiter_WaitForDrainCancelled(t *testing.T) {
	limiter := NewUploadLimiter(1, time.Second)
	_ = limiter.Acquire(context.Background())
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := limiter.WaitForDrain(ctx); err != context.DeadlineExceeded {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestUploadLimiter_StatusAndDefaults(t *testing.T) {
	limiter := NewUploadLimiter(3, time.Second)
	_ = limiter.Acquire(context.Background())
	defer limiter.Release()

	want := UploadLimiterStatus{Active: 1, Available: 2, MaxConcurrent: 3}
	if got := limiter.Status(); got != want {
		t.Errorf("Status() = %+v, want %+v", got, want)
	}

	if got := NewUploadLimiter(0, 0).MaxConcurrent(); got != DefaultMaxConcurrentUploads {
		t.Errorf("default MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentUploads)
	}
}
