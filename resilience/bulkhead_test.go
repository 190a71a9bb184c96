package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBulkheadAllowsWithinLimit(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "jobs", MaxConcurrent: 3})

	var calls int32
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Execute(context.Background(), func() error {
				atomic.AddInt32(&calls, 1)
				time.Sleep(10 * time.Millisecond)
				return nil
			})
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if b.InUse() != 0 {
		t.Errorf("expected all slots released, %d in use", b.InUse())
	}
}

func TestBulkheadRejectsWhenFull(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "jobs", MaxConcurrent: 1})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v", err)
	}
	if !IsRejection(err) {
		t.Error("expected IsRejection to recognise a full bulkhead")
	}

	close(release)
	<-done
}

func TestBulkheadWaitsForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "jobs", MaxConcurrent: 1, MaxWait: time.Second})

	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			time.Sleep(20 * time.Millisecond)
			return nil
		})
	}()
	<-started

	if err := b.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("expected queued call to succeed, got %v", err)
	}
}

func TestBulkheadTimesOutWaiting(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "jobs", MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("expected ErrBulkheadTimeout, got %v", err)
	}
	if !IsRejection(err) {
		t.Error("expected IsRejection for wait timeout")
	}
}

func TestBulkheadRespectsContext(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "jobs", MaxConcurrent: 1, MaxWait: time.Second})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Execute(ctx, func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if IsRejection(err) {
		t.Error("cancellation is not a capacity rejection")
	}
}

func TestBulkheadCallbacks(t *testing.T) {
	var acquired, released, rejected int32
	b := NewBulkhead(BulkheadConfig{
		Name:          "jobs",
		MaxConcurrent: 1,
		OnAcquire:     func(string) { atomic.AddInt32(&acquired, 1) },
		OnRelease:     func(string) { atomic.AddInt32(&released, 1) },
		OnReject:      func(string) { atomic.AddInt32(&rejected, 1) },
	})

	_ = b.Execute(context.Background(), func() error {
		_ = b.Execute(context.Background(), func() error { return nil })
		return nil
	})

	if acquired != 1 || released != 1 || rejected != 1 {
		t.Errorf("unexpected callback counts: acquired=%d released=%d rejected=%d", acquired, released, rejected)
	}
}

func TestExecuteWithResult(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "jobs", MaxConcurrent: 1})

	got, err := ExecuteWithResult(b, context.Background(), func() (string, error) {
		return "hello world", nil
	})
	if err != nil || got != "hello world" {
		t.Errorf("expected result, got %q, %v", got, err)
	}

	wantErr := errors.New("engine failed")
	_, err = ExecuteWithResult(b, context.Background(), func() (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected inner error, got %v", err)
	}
}

func TestConfigBuilders(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if b := cfg.JobBulkhead("jobs"); b.Capacity() != 2 {
		t.Errorf("expected default capacity 2, got %d", b.Capacity())
	}
	if rl := cfg.MetadataLimiter("metadata"); rl.Tokens() < 4.99 {
		t.Errorf("expected full burst of 5 tokens, got %v", rl.Tokens())
	}

	bad := Config{MaxConcurrentJobs: -1, MetadataRate: 1, MetadataBurst: 1}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative job limit")
	}
}

func TestBulkheadWaitingCount(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "jobs", MaxConcurrent: 1, MaxWait: time.Second})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	queued := make(chan error, 1)
	go func() {
		queued <- b.Execute(context.Background(), func() error { return nil })
	}()

	deadline := time.Now().Add(time.Second)
	for b.Waiting() != 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := b.Waiting(); got != 1 {
		t.Fatalf("Waiting() = %d, want 1", got)
	}

	close(release)
	if err := <-queued; err != nil {
		t.Fatalf("queued call failed: %v", err)
	}
	if got := b.Waiting(); got != 0 {
		t.Errorf("Waiting() after drain = %d, want 0", got)
	}
}

func TestBulkheadReleasesSlotOnPanic(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "jobs", MaxConcurrent: 1})

	func() {
		defer func() { _ = recover() }()
		_ = b.Execute(context.Background(), func() error { panic("boom") })
	}()

	if got := b.InUse(); got != 0 {
		t.Errorf("InUse() after panic = %d, want 0", got)
	}
}
