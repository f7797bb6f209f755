package local

import (
	"slices"

	"github.com/nemanja-m/parmr/pkg/core"
)

type worker[K1, V1, K2, V2, K3, V3 any] struct {
	id  int
	job *Job[K1, V1, K2, V2, K3, V3]

	// Only this worker touches the buffer during Map. Worker 0 drains it
	// between the two barrier calls.
	intermediate []core.Pair[K2, V2]
}

func (w *worker[K1, V1, K2, V2, K3, V3]) run() {
	job := w.job

	w.mapAndSort()
	job.barrier.Await()

	if w.id == 0 {
		job.shuffle()
	}
	job.barrier.Await()

	w.reduce()
}

// Emit stores an intermediate pair in the worker's own buffer.
func (w *worker[K1, V1, K2, V2, K3, V3]) Emit(key K2, value V2) {
	w.intermediate = append(w.intermediate, core.Pair[K2, V2]{Key: key, Value: value})
	w.job.intermediateCount.Add(1)
}

func (w *worker[K1, V1, K2, V2, K3, V3]) mapAndSort() {
	job := w.job
	n := int64(len(job.input))

	mapped := 0
	for {
		i := job.nextInput.Add(1) - 1
		if i >= n {
			break
		}
		pair := job.input[i]
		job.client.Map(pair.Key, pair.Value, w)
		job.progress.advance()
		mapped++
	}

	slices.SortStableFunc(w.intermediate, func(a, b core.Pair[K2, V2]) int {
		return job.client.Compare(a.Key, b.Key)
	})

	job.logger.Debug("Worker finished map",
		"job_id", job.id.String(),
		"worker_id", w.id,
		"inputs", mapped,
		"intermediate_pairs", len(w.intermediate),
	)
}

func (w *worker[K1, V1, K2, V2, K3, V3]) reduce() {
	job := w.job
	emitter := outputEmitter[K1, V1, K2, V2, K3, V3]{job: job}

	reduced := 0
	for {
		group, ok := job.popGroup()
		if !ok {
			break
		}
		job.client.Reduce(group, emitter)
		job.progress.advance()
		reduced++
	}

	job.logger.Debug("Worker finished reduce",
		"job_id", job.id.String(),
		"worker_id", w.id,
		"groups", reduced,
	)
}
