package local

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/parmr/pkg/core"
)

func TestPackProgress_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		stage     core.Stage
		total     uint64
		completed uint64
	}{
		{name: "zero value", stage: core.StageUndefined},
		{name: "map start", stage: core.StageMap, total: 3},
		{name: "shuffle halfway", stage: core.StageShuffle, total: 10, completed: 5},
		{name: "reduce at capacity", stage: core.StageReduce, total: MaxUnits, completed: MaxUnits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, total, completed := unpackProgress(packProgress(tt.stage, tt.total, tt.completed))
			require.Equal(t, tt.stage, stage)
			require.Equal(t, tt.total, total)
			require.Equal(t, tt.completed, completed)
		})
	}
}

func TestPackProgress_Layout(t *testing.T) {
	word := packProgress(core.StageReduce, 1, 1)
	require.Equal(t, uint64(3)<<62|uint64(1)<<31|1, word)
}

func TestProgress_Percentage(t *testing.T) {
	var p progress
	require.Equal(t, core.JobState{Stage: core.StageUndefined}, p.load())

	p.begin(core.StageMap, 4)
	require.Equal(t, core.JobState{Stage: core.StageMap}, p.load())

	p.advance()
	require.InDelta(t, 25.0, p.load().Percentage, 1e-9)

	p.advance()
	p.advance()
	p.advance()
	require.InDelta(t, 100.0, p.load().Percentage, 1e-9)

	p.begin(core.StageShuffle, 0)
	state := p.load()
	require.Equal(t, core.StageShuffle, state.Stage)
	require.Zero(t, state.Percentage, "empty stage reports 0%")
}

func TestProgress_ConcurrentAdvance(t *testing.T) {
	const (
		goroutines = 8
		perRoutine = 1000
	)
	var p progress
	p.begin(core.StageReduce, goroutines*perRoutine)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Go(func() {
			for range perRoutine {
				p.advance()
			}
		})
	}
	wg.Wait()

	state := p.load()
	require.Equal(t, core.StageReduce, state.Stage)
	require.InDelta(t, 100.0, state.Percentage, 1e-9)
}
