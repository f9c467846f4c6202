package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolDispatchAfterShutdown(t *testing.T) {
	p := NewPool(1, 4, func(context.Context, task) {})
	p.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}

	if err := p.Dispatch(task{jobID: "late"}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	// 二重の Shutdown も安全に完了する
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("second Shutdown returned error: %v", err)
	}
}

func TestPoolDispatchShutdownRace(t *testing.T) {
	var processed atomic.Int64
	p := NewPool(2, 8, func(context.Context, task) {
		processed.Add(1)
	})
	p.Start(context.Background())

	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
	)
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				err := p.Dispatch(task{jobID: "t"})
				switch {
				case err == nil:
					accepted.Add(1)
				case errors.Is(err, ErrQueueFull), errors.Is(err, ErrPoolClosed):
					// 満杯または停止中の拒否は正常系
				default:
					t.Errorf("unexpected dispatch error: %v", err)
				}
			}
		}()
	}
	close(start)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	wg.Wait()

	// 受理済みタスクは停止完了までに欠けずに実行される
	if processed.Load() != accepted.Load() {
		t.Fatalf("processed %d tasks, accepted %d", processed.Load(), accepted.Load())
	}
}
