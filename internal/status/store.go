package status

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nemanja-m/parmr/pkg/core"
)

var ErrJobNotFound = errors.New("job not found")

// Source reports the live state of a running job.
type Source interface {
	State() core.JobState
}

type Record struct {
	ID          uuid.UUID
	Name        string
	Threads     int
	Source      Source
	SubmittedAt time.Time
	CompletedAt *time.Time
}

// Completed reports whether the run finished.
func (r Record) Completed() bool {
	return r.CompletedAt != nil
}

type ListFilter struct {
	Limit  int
	Offset int
}

// Store keeps job records in memory for the status servers.
type Store struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*Record
}

func NewStore() *Store {
	return &Store{
		jobs: make(map[uuid.UUID]*Record),
	}
}

func (s *Store) Save(record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[record.ID] = &record
}

func (s *Store) Get(id uuid.UUID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, exists := s.jobs[id]
	if !exists {
		return Record{}, ErrJobNotFound
	}
	return *record, nil
}

// List returns a page of records ordered by submission time and the total
// number of records.
func (s *Store) List(filter ListFilter) ([]Record, int) {
	s.mu.RLock()
	records := make([]Record, 0, len(s.jobs))
	for _, record := range s.jobs {
		records = append(records, *record)
	}
	s.mu.RUnlock()

	slices.SortFunc(records, func(a, b Record) int {
		if c := a.SubmittedAt.Compare(b.SubmittedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	total := len(records)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return records[start:end], total
}

func (s *Store) MarkCompleted(id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, exists := s.jobs[id]
	if !exists {
		return ErrJobNotFound
	}
	at = at.UTC()
	record.CompletedAt = &at
	return nil
}
