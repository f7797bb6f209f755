package local

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPool_TaskExecution(t *testing.T) {
	p := NewPool(2)
	p.Start()

	var called int32
	p.Submit(func() { atomic.AddInt32(&called, 1) })
	p.Submit(func() { atomic.AddInt32(&called, 1) })

	p.Close()
	p.Wait()
	require.Equal(t, int32(2), atomic.LoadInt32(&called))
}

func TestPool_WaitBlocksForLongTask(t *testing.T) {
	p := NewPool(1)
	p.Start()

	var done int32
	p.Submit(func() {
		time.Sleep(50 * time.Millisecond)
		atomic.StoreInt32(&done, 1)
	})

	// Close returns right away, Wait blocks until the task is finished
	p.Close()
	p.Wait()
	require.Equal(t, int32(1), atomic.LoadInt32(&done))
}

func TestPool_EachBlockingTaskGetsOwnWorker(t *testing.T) {
	const workers = 4
	p := NewPool(workers)
	p.Start()

	// Every task blocks until all of them are running, which only works if
	// no two tasks share a goroutine.
	b := NewBarrier(workers)
	var passed int32
	for range workers {
		p.Submit(func() {
			b.Await()
			atomic.AddInt32(&passed, 1)
		})
	}
	p.Close()
	p.Wait()

	require.Equal(t, int32(workers), atomic.LoadInt32(&passed))
}

func TestPool_NonPositiveWorkersDefaultsToOne(t *testing.T) {
	p := NewPool(0)
	require.Equal(t, 1, p.numWorkers)
}

func TestPool_CloseIsIdempotent(t *testing.T) {
	p := NewPool(1)
	p.Start()
	p.Close()
	require.NotPanics(t, p.Close)
	p.Wait()
}

func TestPool_SubmitAfterClosePanics(t *testing.T) {
	p := NewPool(1)
	p.Start()
	p.Close()

	// Submitting after close will panic; ensure it does and recover
	didPanic := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				didPanic = true
			}
		}()
		p.Submit(func() {})
	}()
	require.True(t, didPanic)
}
