package jobs

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/nemanja-m/parmr/pkg/core"
)

// Job is a text job runnable from the command line. Input pairs are
// ("file:line", line) and all keys and values are strings.
type Job interface {
	core.Client[string, string, string, string, string, string]

	Name() string
	Describe() string
	Configure(config map[string]string) error
	Validate() error
}

type Factory func() Job

// Lexical orders keys byte-wise. Embed it to get the Compare method of Job.
type Lexical struct{}

func (Lexical) Compare(a, b string) int {
	return strings.Compare(a, b)
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Factory)
)

func Register(name string, factory Factory) error {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[name]; exists {
		return fmt.Errorf("job already registered: %s", name)
	}
	registry[name] = factory
	return nil
}

// Get returns a new, unconfigured instance of the named job.
func Get(name string) (Job, error) {
	mu.RLock()
	factory, exists := registry[name]
	mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("job not found: %s", name)
	}
	return factory(), nil
}

func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
