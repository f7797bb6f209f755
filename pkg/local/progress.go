package local

import (
	"sync/atomic"

	"github.com/nemanja-m/parmr/pkg/core"
)

// Progress is packed into a single word so a stage change and its new total
// are published by one store and readers never need a lock:
//
//	bits 63..62  stage
//	bits 61..31  total units
//	bits 30..0   completed units
const (
	stageShift = 62
	totalShift = 31
	unitsMask  = 1<<31 - 1

	// MaxUnits is the largest number of units a single stage can track.
	MaxUnits = unitsMask
)

type progress struct {
	word atomic.Uint64
}

func packProgress(stage core.Stage, total, completed uint64) uint64 {
	return uint64(stage)<<stageShift | (total&unitsMask)<<totalShift | completed&unitsMask
}

func unpackProgress(word uint64) (stage core.Stage, total, completed uint64) {
	return core.Stage(word >> stageShift), (word >> totalShift) & unitsMask, word & unitsMask
}

// begin switches to stage and resets the completed count.
func (p *progress) begin(stage core.Stage, total int) {
	p.word.Store(packProgress(stage, uint64(total), 0))
}

// advance records one completed unit of the current stage.
func (p *progress) advance() {
	p.word.Add(1)
}

func (p *progress) load() core.JobState {
	stage, total, completed := unpackProgress(p.word.Load())
	state := core.JobState{Stage: stage}
	if total != 0 {
		state.Percentage = float64(completed) / float64(total) * 100
	}
	return state
}
