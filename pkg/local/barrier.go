package local

import "sync"

// Barrier is a reusable rendezvous point for a fixed number of goroutines.
// Await blocks until all parties have called it, then releases every caller
// at once and resets for the next round.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	waiting    int
	generation uint64
}

func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		panic("barrier requires at least one party")
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *Barrier) Await() {
	b.mu.Lock()
	defer b.mu.Unlock()

	generation := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return
	}

	// A released caller may re-enter before everyone else has woken, so wait
	// on the generation rather than the counter.
	for generation == b.generation {
		b.cond.Wait()
	}
}
