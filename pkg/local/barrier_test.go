package local

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBarrier_SingleParty(t *testing.T) {
	b := NewBarrier(1)

	done := make(chan struct{})
	go func() {
		b.Await()
		b.Await()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("single-party barrier blocked")
	}
}

func TestBarrier_BlocksUntilAllArrive(t *testing.T) {
	const parties = 3
	b := NewBarrier(parties)

	var released atomic.Int32
	var wg sync.WaitGroup
	for range parties - 1 {
		wg.Go(func() {
			b.Await()
			released.Add(1)
		})
	}

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(0), released.Load(), "no party may pass before the last one arrives")

	b.Await()
	wg.Wait()
	require.Equal(t, int32(parties-1), released.Load())
}

func TestBarrier_Reusable(t *testing.T) {
	const (
		parties = 4
		rounds  = 50
	)
	b := NewBarrier(parties)

	// Every party records the round it is in. After each barrier nobody may
	// still be in an earlier round.
	var arrived [rounds]atomic.Int32
	var wg sync.WaitGroup
	for range parties {
		wg.Go(func() {
			for round := range rounds {
				arrived[round].Add(1)
				b.Await()
				if got := arrived[round].Load(); got != parties {
					t.Errorf("round %d: passed barrier with %d arrivals", round, got)
				}
			}
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("barrier deadlocked across rounds")
	}
}

func TestNewBarrier_PanicsOnNonPositiveParties(t *testing.T) {
	require.Panics(t, func() { NewBarrier(0) })
	require.Panics(t, func() { NewBarrier(-2) })
}
