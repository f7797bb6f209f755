package local

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/nemanja-m/parmr/internal/shared/logging"
	"github.com/nemanja-m/parmr/pkg/core"
)

var (
	ErrInvalidThreads = errors.New("thread count must be at least 1")
	ErrNilClient      = errors.New("client is required")
	ErrNilOutput      = errors.New("output slice is required")
	ErrTooManyUnits   = errors.New("too many units to track progress")
	ErrJobClosed      = errors.New("job already closed")
)

type options struct {
	id     uuid.UUID
	name   string
	logger logging.Logger
}

type Option func(*options)

func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func WithID(id uuid.UUID) Option {
	return func(o *options) {
		o.id = id
	}
}

// Stats is a snapshot of the job's counters.
type Stats struct {
	Threads           int
	InputPairs        int
	IntermediatePairs int
	OutputPairs       int
}

// Job runs one MapReduce job on a fixed set of workers. It owns every piece
// of shared state; workers only keep their id and a pointer back to the job.
//
// Each worker maps the inputs it claims into its own buffer and sorts it,
// then waits at the barrier. Worker 0 alone merges all buffers into key
// groups while the others are parked at the second barrier call, so it has
// exclusive access to every buffer until they are drained. After the second
// barrier all workers reduce groups taken from the shared queue.
type Job[K1, V1, K2, V2, K3, V3 any] struct {
	id     uuid.UUID
	name   string
	logger logging.Logger

	client   core.Client[K1, V1, K2, V2, K3, V3]
	input    []core.Pair[K1, V1]
	inputLen int
	output   *[]core.Pair[K3, V3]
	workers  []*worker[K1, V1, K2, V2, K3, V3]
	pool     *Pool
	barrier  *Barrier
	progress progress
	threads  int

	outputMu sync.Mutex
	queueMu  sync.Mutex
	groups   [][]core.Pair[K2, V2]

	nextInput         atomic.Int64
	intermediateCount atomic.Int64
	outputCount       atomic.Int64

	done     chan struct{}
	waitOnce sync.Once
	joined   atomic.Bool
	closed   atomic.Bool
}

// Start validates the arguments, launches threads workers and returns without
// waiting for them. Output pairs are appended to *output; the caller must not
// touch it until Wait returns.
func Start[K1, V1, K2, V2, K3, V3 any](
	client core.Client[K1, V1, K2, V2, K3, V3],
	input []core.Pair[K1, V1],
	output *[]core.Pair[K3, V3],
	threads int,
	opts ...Option,
) (*Job[K1, V1, K2, V2, K3, V3], error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if output == nil {
		return nil, ErrNilOutput
	}
	if threads < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidThreads, threads)
	}
	if len(input) > MaxUnits {
		return nil, fmt.Errorf("%w: %d input pairs, max %d", ErrTooManyUnits, len(input), MaxUnits)
	}

	o := options{id: uuid.New(), logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	job := &Job[K1, V1, K2, V2, K3, V3]{
		id:       o.id,
		name:     o.name,
		logger:   o.logger,
		client:   client,
		input:    input,
		inputLen: len(input),
		output:   output,
		pool:     NewPool(threads),
		barrier:  NewBarrier(threads),
		threads:  threads,
		done:     make(chan struct{}),
	}
	job.workers = make([]*worker[K1, V1, K2, V2, K3, V3], threads)
	for i := range threads {
		job.workers[i] = &worker[K1, V1, K2, V2, K3, V3]{id: i, job: job}
	}

	job.progress.begin(core.StageMap, len(input))
	job.logger.Debug("Job started",
		"job_id", job.id.String(),
		"name", job.name,
		"threads", threads,
		"input_pairs", len(input),
	)

	job.pool.Start()
	for _, w := range job.workers {
		job.pool.Submit(w.run)
	}
	job.pool.Close()

	go func() {
		job.pool.Wait()
		close(job.done)
	}()

	return job, nil
}

func (j *Job[K1, V1, K2, V2, K3, V3]) ID() uuid.UUID {
	return j.id
}

func (j *Job[K1, V1, K2, V2, K3, V3]) Name() string {
	return j.name
}

func (j *Job[K1, V1, K2, V2, K3, V3]) Threads() int {
	return j.threads
}

// Done is closed once every worker has returned.
func (j *Job[K1, V1, K2, V2, K3, V3]) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until every worker has finished. Only the first call joins the
// workers; later calls return immediately.
func (j *Job[K1, V1, K2, V2, K3, V3]) Wait() {
	if j.joined.Load() {
		return
	}
	j.waitOnce.Do(func() {
		<-j.done
		j.joined.Store(true)
		j.logger.Debug("Job finished",
			"job_id", j.id.String(),
			"intermediate_pairs", j.intermediateCount.Load(),
			"output_pairs", j.outputCount.Load(),
		)
	})
}

// State reports the current stage and its completion percentage without
// taking any lock. It is safe to call at any time, including after Close.
func (j *Job[K1, V1, K2, V2, K3, V3]) State() core.JobState {
	return j.progress.load()
}

func (j *Job[K1, V1, K2, V2, K3, V3]) Stats() Stats {
	return Stats{
		Threads:           j.threads,
		InputPairs:        j.inputLen,
		IntermediatePairs: int(j.intermediateCount.Load()),
		OutputPairs:       int(j.outputCount.Load()),
	}
}

// Close waits for the job and releases everything it holds. Closing a nil
// job is a no-op; closing twice returns ErrJobClosed.
func (j *Job[K1, V1, K2, V2, K3, V3]) Close() error {
	if j == nil {
		return nil
	}
	if !j.closed.CompareAndSwap(false, true) {
		return ErrJobClosed
	}

	j.Wait()

	j.queueMu.Lock()
	j.groups = nil
	j.queueMu.Unlock()

	for _, w := range j.workers {
		w.intermediate = nil
		w.job = nil
	}
	j.workers = nil
	j.input = nil
	j.output = nil
	j.client = nil

	j.logger.Debug("Job closed", "job_id", j.id.String())
	return nil
}

// popGroup removes one key group from the queue. The emptiness check and the
// removal happen under the same lock.
func (j *Job[K1, V1, K2, V2, K3, V3]) popGroup() ([]core.Pair[K2, V2], bool) {
	j.queueMu.Lock()
	defer j.queueMu.Unlock()

	n := len(j.groups)
	if n == 0 {
		return nil, false
	}
	group := j.groups[n-1]
	j.groups[n-1] = nil
	j.groups = j.groups[:n-1]
	return group, true
}

// outputEmitter appends reduce results to the caller's output slice.
type outputEmitter[K1, V1, K2, V2, K3, V3 any] struct {
	job *Job[K1, V1, K2, V2, K3, V3]
}

func (e outputEmitter[K1, V1, K2, V2, K3, V3]) Emit(key K3, value V3) {
	e.job.outputMu.Lock()
	*e.job.output = append(*e.job.output, core.Pair[K3, V3]{Key: key, Value: value})
	e.job.outputMu.Unlock()
	e.job.outputCount.Add(1)
}
