package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadLocal_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadLocal("")
	require.NoError(t, err)

	require.Equal(t, "wordcount", cfg.Job.Name)
	require.Equal(t, runtime.NumCPU(), cfg.Threads)
	require.Equal(t, 4, cfg.Partitions)
	require.Equal(t, time.Second, cfg.ProgressInterval)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.False(t, cfg.Status.Enabled)
	require.Equal(t, ":8080", cfg.Status.REST.Addr)
	require.Equal(t, 15*time.Second, cfg.Status.REST.ReadTimeout)
	require.Equal(t, ":9090", cfg.Status.GRPC.Addr)
	require.True(t, cfg.Status.GRPC.EnableReflection)
}

func TestLoadLocal_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := `
job:
  name: grep
  params:
    pattern: Gregor
input: data/*.txt
output: out
threads: 3
partitions: 2
progress_interval: 250ms
logging:
  level: debug
  format: text
status:
  enabled: true
  rest:
    addr: ":18080"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadLocal(path)
	require.NoError(t, err)

	require.Equal(t, "grep", cfg.Job.Name)
	require.Equal(t, map[string]string{"pattern": "Gregor"}, cfg.Job.Params)
	require.Equal(t, "data/*.txt", cfg.Input)
	require.Equal(t, "out", cfg.Output)
	require.Equal(t, 3, cfg.Threads)
	require.Equal(t, 2, cfg.Partitions)
	require.Equal(t, 250*time.Millisecond, cfg.ProgressInterval)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
	require.True(t, cfg.Status.Enabled)
	require.Equal(t, ":18080", cfg.Status.REST.Addr)
	require.Equal(t, ":9090", cfg.Status.GRPC.Addr)
	require.NoError(t, cfg.Validate())
}

func TestLoadLocal_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PARMR_THREADS", "7")
	t.Setenv("PARMR_LOGGING_LEVEL", "warn")

	cfg, err := LoadLocal("")
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Threads)
	require.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadLocal_MissingExplicitFile(t *testing.T) {
	_, err := LoadLocal(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLocalConfig_Validate(t *testing.T) {
	valid := func() LocalConfig {
		return LocalConfig{
			Job:              JobConfig{Name: "wordcount"},
			Input:            "*.txt",
			Output:           "out",
			Threads:          2,
			Partitions:       1,
			ProgressInterval: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*LocalConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(*LocalConfig) {}},
		{name: "no job", mutate: func(c *LocalConfig) { c.Job.Name = "" }, wantErr: true},
		{name: "no input", mutate: func(c *LocalConfig) { c.Input = "" }, wantErr: true},
		{name: "no output", mutate: func(c *LocalConfig) { c.Output = "" }, wantErr: true},
		{name: "zero threads", mutate: func(c *LocalConfig) { c.Threads = 0 }, wantErr: true},
		{name: "zero partitions", mutate: func(c *LocalConfig) { c.Partitions = 0 }, wantErr: true},
		{name: "zero interval", mutate: func(c *LocalConfig) { c.ProgressInterval = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if tt.wantErr {
				require.Error(t, cfg.Validate())
			} else {
				require.NoError(t, cfg.Validate())
			}
		})
	}
}
