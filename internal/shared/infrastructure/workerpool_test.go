package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolRunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 4)
	var done atomic.Int64

	for i := 0; i < 100; i++ {
		pool.Submit(func(context.Context) error {
			done.Add(1)
			return nil
		})
	}

	if err := pool.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if done.Load() != 100 {
		t.Errorf("Expected 100 tasks, got %d", done.Load())
	}
}

func TestWorkerPoolRespectsLimit(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2)
	var running, peak atomic.Int64

	for i := 0; i < 10; i++ {
		pool.Submit(func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
			return nil
		})
	}
	pool.Wait()

	if peak.Load() > 2 {
		t.Errorf("Expected at most 2 concurrent tasks, saw %d", peak.Load())
	}
}

func TestWorkerPoolFirstErrorCancels(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	boom := errors.New("boom")
	var after atomic.Int64

	pool.Submit(func(context.Context) error { return boom })
	for i := 0; i < 5; i++ {
		pool.Submit(func(context.Context) error {
			after.Add(1)
			return nil
		})
	}

	if err := pool.Wait(); !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
	if after.Load() != 0 {
		t.Errorf("Expected tasks after the failure to be skipped, %d ran", after.Load())
	}
}

// BenchmarkWorkerPool_FastTasks tâches très courtes (overhead du pool)
func BenchmarkWorkerPool_FastTasks(b *testing.B) {
	for i := 0; i < b.N; i++ {
		pool := NewWorkerPool(context.Background(), 4)
		for j := 0; j < 100; j++ {
			pool.Submit(func(context.Context) error {
				_ = j * j
				return nil
			})
		}
		pool.Wait()
	}
}

// BenchmarkWorkerPool_Scalability effet du nombre de workers sur des tâches de 100µs
func BenchmarkWorkerPool_Scalability(b *testing.B) {
	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				pool := NewWorkerPool(context.Background(), workers)
				for j := 0; j < 32; j++ {
					pool.Submit(func(context.Context) error {
						time.Sleep(100 * time.Microsecond)
						return nil
					})
				}
				pool.Wait()
			}
		})
	}
}
