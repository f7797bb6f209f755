package local

import "sync"

type Task func()

// Pool runs submitted tasks on a fixed set of goroutines. Tasks are handed
// over one at a time, so submitting exactly as many long-running tasks as
// there are workers gives each task its own goroutine.
type Pool struct {
	numWorkers int
	tasks      chan Task
	once       sync.Once
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &Pool{
		numWorkers: numWorkers,
		tasks:      make(chan Task),
	}
}

func (p *Pool) Start() {
	p.once.Do(func() {
		for range p.numWorkers {
			p.wg.Go(func() {
				for task := range p.tasks {
					if task != nil {
						task()
					}
				}
			})
		}
	})
}

// Submit blocks until an idle worker accepts the task. It panics after Close.
func (p *Pool) Submit(task Task) {
	p.tasks <- task
}

// Close stops accepting tasks. Already accepted tasks keep running.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
	})
}

// Wait blocks until the pool is closed and every worker has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
