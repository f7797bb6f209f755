package local

import (
	"github.com/nemanja-m/parmr/pkg/core"
)

// shuffle runs on worker 0 only, between the two barrier calls.
func (j *Job[K1, V1, K2, V2, K3, V3]) shuffle() {
	total := j.intermediateCount.Load()
	if total > MaxUnits {
		j.logger.Fatal("Intermediate pairs exceed progress capacity",
			"job_id", j.id.String(),
			"intermediate_pairs", total,
			"max", MaxUnits,
		)
		return
	}

	j.progress.begin(core.StageShuffle, int(total))
	j.logger.Debug("Stage started", "job_id", j.id.String(), "stage", core.StageShuffle.String(), "total", total)

	buffers := make([][]core.Pair[K2, V2], len(j.workers))
	for i, w := range j.workers {
		buffers[i] = w.intermediate
	}

	j.groups = mergeGroups(buffers, j.client.Compare, j.progress.advance)

	for _, w := range j.workers {
		w.intermediate = nil
	}

	j.progress.begin(core.StageReduce, len(j.groups))
	j.logger.Debug("Stage started", "job_id", j.id.String(), "stage", core.StageReduce.String(), "total", len(j.groups))
}

// mergeGroups drains buffers sorted in ascending key order into groups of
// pairs with equal keys. Each round takes the largest tail key across all
// non-empty buffers and pops every pair equal to it from every buffer, so
// each distinct key ends up in exactly one group. Groups come out in
// descending key order. moved is called once per pair taken.
func mergeGroups[K, V any](buffers [][]core.Pair[K, V], compare func(a, b K) int, moved func()) [][]core.Pair[K, V] {
	active := make([][]core.Pair[K, V], 0, len(buffers))
	for _, buf := range buffers {
		if len(buf) > 0 {
			active = append(active, buf)
		}
	}

	var groups [][]core.Pair[K, V]
	for len(active) > 0 {
		maxKey := active[0][len(active[0])-1].Key
		for _, buf := range active[1:] {
			if key := buf[len(buf)-1].Key; compare(key, maxKey) > 0 {
				maxKey = key
			}
		}

		var group []core.Pair[K, V]
		remaining := active[:0]
		for _, buf := range active {
			for len(buf) > 0 && compare(buf[len(buf)-1].Key, maxKey) >= 0 {
				group = append(group, buf[len(buf)-1])
				buf = buf[:len(buf)-1]
				if moved != nil {
					moved()
				}
			}
			if len(buf) > 0 {
				remaining = append(remaining, buf)
			}
		}
		active = remaining
		groups = append(groups, group)
	}

	return groups
}
