package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nemanja-m/parmr/internal/runner"
	"github.com/nemanja-m/parmr/internal/shared/config"
	"github.com/nemanja-m/parmr/internal/shared/logging"
	"github.com/nemanja-m/parmr/internal/status"
	"github.com/nemanja-m/parmr/internal/status/grpc"
	"github.com/nemanja-m/parmr/internal/status/rest"
	"github.com/nemanja-m/parmr/pkg/jobs"

	_ "github.com/nemanja-m/parmr/examples/grep"
	_ "github.com/nemanja-m/parmr/examples/wordcount"
)

// params collects repeated -param key=value flags.
type params map[string]string

func (p params) String() string {
	pairs := make([]string, 0, len(p))
	for k, v := range p {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (p params) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	p[key] = val
	return nil
}

func main() {
	jobParams := params{}
	var (
		configPath = flag.String("config", "", "path to config file")
		jobName    = flag.String("job", "", "job to run (e.g., wordcount, grep)")
		input      = flag.String("input", "", "input files glob pattern")
		output     = flag.String("output", "", "output directory")
		threads    = flag.Int("threads", 0, "number of worker threads")
		partitions = flag.Int("partitions", 0, "number of output partitions")
		listJobs   = flag.Bool("list", false, "list available jobs and exit")
	)
	flag.Var(jobParams, "param", "job parameter as key=value (repeatable)")
	flag.Parse()

	if *listJobs {
		for _, name := range jobs.List() {
			job, _ := jobs.Get(name)
			fmt.Printf("%-12s %s\n", name, job.Describe())
		}
		return
	}

	cfg, err := config.LoadLocal(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Explicit flags win over file and environment values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "job":
			cfg.Job.Name = *jobName
		case "input":
			cfg.Input = *input
		case "output":
			cfg.Output = *output
		case "threads":
			cfg.Threads = *threads
		case "partitions":
			cfg.Partitions = *partitions
		}
	})
	if len(jobParams) > 0 {
		if cfg.Job.Params == nil {
			cfg.Job.Params = make(map[string]string)
		}
		for k, v := range jobParams {
			cfg.Job.Params[k] = v
		}
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *status.Store
	var restServer *http.Server
	var grpcServer *grpc.Server
	if cfg.Status.Enabled {
		store = status.NewStore()

		restServer = rest.NewServer(cfg.Status.REST, store, logger)
		go func() {
			logger.Info("Starting REST status server", "addr", cfg.Status.REST.Addr)
			if err := restServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("REST server error", "error", err)
			}
		}()

		grpcServer = grpc.NewServer(cfg.Status.GRPC, logger)
		go func() {
			if err := grpcServer.Start(); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
		grpcServer.SetServing(true)
	}

	summary, runErr := runner.Run(ctx, runner.Options{
		JobName:          cfg.Job.Name,
		Params:           cfg.Job.Params,
		Input:            cfg.Input,
		Output:           cfg.Output,
		Threads:          cfg.Threads,
		Partitions:       cfg.Partitions,
		ProgressInterval: cfg.ProgressInterval,
		Store:            store,
		Logger:           logger,
	})

	if cfg.Status.Enabled {
		grpcServer.SetServing(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := restServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("REST server forced to shutdown", "error", err)
		}
		cancel()
		grpcServer.Stop()
	}

	if runErr != nil {
		logger.Fatal("Job failed", "error", runErr)
	}

	logger.Info("Job completed successfully",
		"job_id", summary.JobID,
		"name", summary.Name,
		"output", cfg.Output,
		"duration", summary.Duration.String(),
	)
}
