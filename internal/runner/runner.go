package runner

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nemanja-m/parmr/internal/shared/logging"
	"github.com/nemanja-m/parmr/internal/status"
	"github.com/nemanja-m/parmr/pkg/core"
	"github.com/nemanja-m/parmr/pkg/jobs"
	"github.com/nemanja-m/parmr/pkg/local"
)

var ErrNoInputFiles = errors.New("no input files matched")

const defaultProgressInterval = time.Second

type Options struct {
	JobName          string
	Params           map[string]string
	Input            string
	Output           string
	Threads          int
	Partitions       int
	ProgressInterval time.Duration

	// Store, when set, receives a record of the run for the status servers.
	Store  *status.Store
	Logger logging.Logger
}

type Summary struct {
	JobID      string
	Name       string
	InputFiles int
	Partitions int
	Stats      local.Stats
	Duration   time.Duration
}

// Run executes a registered job over the lines of every file matching
// opts.Input, a comma-separated list of glob patterns, and writes the reduced
// pairs into opts.Output, one file per partition. Cancelling ctx only stops
// progress reporting; the job itself always runs to completion.
func Run(ctx context.Context, opts Options) (Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.Partitions < 1 {
		return Summary{}, fmt.Errorf("partitions must be >= 1, got %d", opts.Partitions)
	}
	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = defaultProgressInterval
	}

	job, err := jobs.Get(opts.JobName)
	if err != nil {
		return Summary{}, fmt.Errorf("%w (available: %v)", err, jobs.List())
	}
	if err := job.Configure(opts.Params); err != nil {
		return Summary{}, fmt.Errorf("configure %s: %w", opts.JobName, err)
	}
	if err := job.Validate(); err != nil {
		return Summary{}, fmt.Errorf("validate %s: %w", opts.JobName, err)
	}

	files, err := local.FindFiles(strings.Split(opts.Input, ",")...)
	if err != nil {
		return Summary{}, fmt.Errorf("find input files: %w", err)
	}
	if len(files) == 0 {
		return Summary{}, fmt.Errorf("%w: %s", ErrNoInputFiles, opts.Input)
	}

	input, err := readInput(files)
	if err != nil {
		return Summary{}, err
	}

	started := time.Now()
	var (
		client core.Client[string, string, string, string, string, string] = job
		output []core.KeyValue
	)
	engine, err := local.Start(client, input, &output, opts.Threads,
		local.WithName(job.Name()),
		local.WithLogger(logger),
	)
	if err != nil {
		return Summary{}, err
	}

	if opts.Store != nil {
		opts.Store.Save(status.Record{
			ID:          engine.ID(),
			Name:        job.Name(),
			Threads:     engine.Threads(),
			Source:      engine,
			SubmittedAt: started.UTC(),
		})
	}

	logger.Info("Job submitted",
		"job_id", engine.ID().String(),
		"name", job.Name(),
		"input_files", len(files),
		"input_pairs", len(input),
		"threads", opts.Threads,
	)

	reportProgress(ctx, engine, interval, logger)

	engine.Wait()
	stats := engine.Stats()
	summary := Summary{
		JobID:      engine.ID().String(),
		Name:       job.Name(),
		InputFiles: len(files),
		Partitions: opts.Partitions,
		Stats:      stats,
	}
	if err := engine.Close(); err != nil {
		return summary, err
	}

	partitions := partition(output, opts.Partitions, job.Compare)
	if err := local.WritePartitions(opts.Output, partitions); err != nil {
		return summary, fmt.Errorf("write output: %w", err)
	}

	summary.Duration = time.Since(started)
	if opts.Store != nil {
		if err := opts.Store.MarkCompleted(engine.ID(), time.Now()); err != nil {
			return summary, err
		}
	}

	logger.Info("Job completed",
		"job_id", summary.JobID,
		"output_pairs", stats.OutputPairs,
		"intermediate_pairs", stats.IntermediatePairs,
		"partitions", opts.Partitions,
		"duration_ms", summary.Duration.Milliseconds(),
	)
	return summary, nil
}

func readInput(files []string) ([]core.KeyValue, error) {
	var input []core.KeyValue
	for _, file := range files {
		lines, err := local.ReadLines(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		for _, line := range lines {
			input = append(input, core.KeyValue{
				Key:   fmt.Sprintf("%s:%d", line.Filename, line.Number),
				Value: line.Text,
			})
		}
	}
	return input, nil
}

func reportProgress(ctx context.Context, engine *local.Job[string, string, string, string, string, string], interval time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-engine.Done():
			return
		case <-ctx.Done():
			logger.Warn("Progress reporting stopped", "job_id", engine.ID().String(), "error", ctx.Err())
			return
		case <-ticker.C:
			state := engine.State()
			logger.Info("Job progress",
				"job_id", engine.ID().String(),
				"stage", state.Stage.String(),
				"percentage", fmt.Sprintf("%.2f", state.Percentage),
			)
		}
	}
}

// partition assigns every pair to core.Partition(key, n) and orders each
// partition by key, then value.
func partition(pairs []core.KeyValue, n int, compare func(a, b string) int) map[int][]core.KeyValue {
	partitions := make(map[int][]core.KeyValue, n)
	for _, kv := range pairs {
		p := core.Partition(kv.Key, n)
		partitions[p] = append(partitions[p], kv)
	}
	for _, records := range partitions {
		slices.SortFunc(records, func(a, b core.KeyValue) int {
			if c := compare(a.Key, b.Key); c != 0 {
				return c
			}
			return cmp.Compare(a.Value, b.Value)
		})
	}
	return partitions
}
