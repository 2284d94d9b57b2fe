package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsJob(t *testing.T) {
	p := NewPool(2)
	want := errors.New("job failed")

	if err := p.Do(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("Do = %v", err)
	}
	if err := p.Do(context.Background(), func(ctx context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("Do = %v, want %v", err, want)
	}
}

func TestPoolBound(t *testing.T) {
	const size = 2
	p := NewPool(size)

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Do(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	t.Logf("peak concurrency %d", peak)
	if peak > size {
		t.Errorf("peak concurrency %d exceeds pool size %d", peak, size)
	}
}

func TestPoolAbandonsOnTimeout(t *testing.T) {
	p := NewPool(1)
	cancelled := make(chan struct{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := p.Do(ctx, func(jobCtx context.Context) error {
		<-jobCtx.Done()
		time.Sleep(50 * time.Millisecond)
		close(cancelled)
		return jobCtx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do = %v, want DeadlineExceeded", err)
	}
	select {
	case <-cancelled:
		t.Error("caller waited for the abandoned job")
	default:
	}

	p.Wait()
	select {
	case <-cancelled:
	default:
		t.Error("job context was not cancelled")
	}
}

func TestPoolWaitingForSlotHonoursContext(t *testing.T) {
	p := NewPool(1)
	release := make(chan struct{})
	started := make(chan struct{})

	go p.Do(context.Background(), func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ran := false
	err := p.Do(ctx, func(ctx context.Context) error {
		ran = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do = %v, want DeadlineExceeded", err)
	}
	if ran {
		t.Error("job must not run without a slot")
	}

	close(release)
	p.Wait()
}

func TestNewPoolMinimumSize(t *testing.T) {
	if NewPool(0).Size() != 1 {
		t.Error("pool size must be at least 1")
	}
}
