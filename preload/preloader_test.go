package preload

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitNotLoading polls IsLoading the way a render loop would, failing the
// test if the preloader never settles.
func waitNotLoading(t *testing.T, p *Preloader, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for p.IsLoading() {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for IsLoading to become false")
		}
		time.Sleep(time.Millisecond)
	}
}

func newTestPreloader(t *testing.T, host any) *Preloader {
	t.Helper()
	p := NewPreloader(host, Config{Workers: 4}, setupTestLogger())
	t.Cleanup(p.Stop)
	return p
}

func TestPreloader_RunsAllTasksExactlyOnce(t *testing.T) {
	p := newTestPreloader(t, nil)

	release := make(chan struct{})
	counters := make([]atomic.Int32, 3)
	for i := range counters {
		i := i
		p.AddFunc("task", func(ctx context.Context) error {
			<-release
			counters[i].Add(1)
			return nil
		})
	}

	assert.False(t, p.IsLoading(), "nothing submitted yet")

	p.Start()
	assert.True(t, p.IsLoading(), "busy immediately after start")

	close(release)
	waitNotLoading(t, p, 2*time.Second)

	var total int32
	for i := range counters {
		got := counters[i].Load()
		assert.Equal(t, int32(1), got, "task %d must run exactly once", i)
		total += got
	}
	assert.Equal(t, int32(3), total)
}

func TestPreloader_StartWithEmptyQueueIsNoOp(t *testing.T) {
	p := newTestPreloader(t, nil)

	require.False(t, p.IsLoading())
	p.Start()
	assert.False(t, p.IsLoading())
}

func TestPreloader_FailedTaskDoesNotBlockOthers(t *testing.T) {
	p := newTestPreloader(t, nil)

	var completed atomic.Int32
	p.AddFunc("fails", func(ctx context.Context) error {
		return errors.New("boom")
	})
	p.AddFunc("panics", func(ctx context.Context) error {
		panic("boom")
	})
	p.AddFunc("succeeds", func(ctx context.Context) error {
		completed.Add(1)
		return nil
	})

	p.Start()
	waitNotLoading(t, p, 2*time.Second)

	assert.Equal(t, int32(1), completed.Load())
}

func TestPreloader_UnresolvedNameIsDropped(t *testing.T) {
	recv := &loader{}
	p := newTestPreloader(t, recv)

	p.AddTask("DoesNotExist")
	assert.Equal(t, 0, p.queue.Len(), "failed registration must not enqueue")

	// Start on the untouched queue behaves as the empty-queue no-op.
	p.Start()
	assert.False(t, p.IsLoading())
	assert.Equal(t, int32(0), recv.calls.Load())
}

func TestPreloader_UnresolvedNameDoesNotAffectOthers(t *testing.T) {
	recv := &loader{}
	p := newTestPreloader(t, recv)

	p.AddTask("Load")
	p.AddTask("DoesNotExist")
	p.AddTask("Load")

	assert.Equal(t, 2, p.queue.Len())

	p.Start()
	waitNotLoading(t, p, 2*time.Second)
	assert.Equal(t, int32(2), recv.calls.Load())
}

func TestPreloader_MethodTasksOnExplicitReceiver(t *testing.T) {
	p := newTestPreloader(t, nil)

	recv := &loader{}
	p.AddTaskOn(recv, "Load")
	p.AddTaskOn(recv, "LoadWithError")

	p.Start()
	waitNotLoading(t, p, 2*time.Second)
	assert.Equal(t, int32(2), recv.calls.Load())
}

func TestPreloader_ConcurrentRegistrationDuringStart(t *testing.T) {
	p := newTestPreloader(t, nil)

	const producers = 8
	const perProducer = 25
	const total = producers * perProducer

	counters := make([]atomic.Int32, total)

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				idx := i*perProducer + j
				p.AddFunc("task", func(ctx context.Context) error {
					counters[idx].Add(1)
					return nil
				})
				// Interleave drains with ongoing registration.
				if j%5 == 0 {
					p.Start()
				}
			}
		}()
	}
	wg.Wait()

	// Pick up anything registered after the last interleaved drain.
	p.Start()
	require.True(t, p.queue.IsEmpty())

	waitNotLoading(t, p, 5*time.Second)

	for i := range counters {
		assert.Equal(t, int32(1), counters[i].Load(),
			"task %d must be submitted exactly once", i)
	}
	assert.Equal(t, int64(total), p.Pool().Stats().Completed)
}

func TestPreloader_ReusableForSuccessiveBatches(t *testing.T) {
	p := newTestPreloader(t, nil)

	var first, second atomic.Int32

	p.AddFunc("first batch", func(ctx context.Context) error {
		first.Add(1)
		return nil
	})
	p.Start()
	waitNotLoading(t, p, 2*time.Second)
	require.Equal(t, int32(1), first.Load())

	release := make(chan struct{})
	p.AddFunc("second batch", func(ctx context.Context) error {
		<-release
		second.Add(1)
		return nil
	})
	p.Start()
	assert.True(t, p.IsLoading())
	close(release)
	waitNotLoading(t, p, 2*time.Second)
	assert.Equal(t, int32(1), second.Load())
}

func TestPreloader_FrameDrawsOverlayOnlyWhileLoading(t *testing.T) {
	p := newTestPreloader(t, nil)

	var draws atomic.Int32
	var lastStats Stats
	var mu sync.Mutex
	p.SetOverlay(OverlayFunc(func(stats Stats) {
		draws.Add(1)
		mu.Lock()
		lastStats = stats
		mu.Unlock()
	}))

	// Not loading: Frame paints nothing.
	p.Frame()
	assert.Equal(t, int32(0), draws.Load())

	release := make(chan struct{})
	p.AddFunc("blocker", func(ctx context.Context) error {
		<-release
		return nil
	})
	p.Start()

	p.Frame()
	assert.Equal(t, int32(1), draws.Load())
	mu.Lock()
	assert.Equal(t, int64(1), lastStats.Submitted)
	mu.Unlock()

	close(release)
	waitNotLoading(t, p, time.Second)

	p.Frame()
	assert.Equal(t, int32(1), draws.Load(), "no painting after quiescence")
}

func TestPreloader_NilOverlayResetsToNoop(t *testing.T) {
	p := newTestPreloader(t, nil)
	p.SetOverlay(nil)

	release := make(chan struct{})
	p.AddFunc("blocker", func(ctx context.Context) error {
		<-release
		return nil
	})
	p.Start()

	// Must not panic with a nil overlay injected.
	p.Frame()

	close(release)
	waitNotLoading(t, p, time.Second)
}
