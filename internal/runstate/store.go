// Package runstate keeps the outcome of the latest scheduled pull on disk so it
// survives restarts of the schedule command.
package runstate

import (
	"sync"

	"VixPull/internal/model"

	"github.com/sirupsen/logrus"
)

// Store guards the persisted last run.
type Store struct {
	mu       sync.Mutex
	state    *LastRun
	filePath string
}

// NewStore creates a Store, loading any previous state from disk.
func NewStore(filePath string) (*Store, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	return &Store{state: state, filePath: filePath}, nil
}

// Get returns a copy of the last run; ok is false when nothing was recorded yet.
func (s *Store) Get() (LastRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return LastRun{}, false
	}
	return *s.state, true
}

// Record replaces the last run and writes it to disk. A write failure is logged and
// the in-memory state still changes.
func (s *Store) Record(summary model.RunSummary, runErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &LastRun{Summary: summary}
	if runErr != nil {
		state.Error = runErr.Error()
	}
	s.state = state
	if err := SaveState(s.filePath, state); err != nil {
		logrus.WithError(err).WithField("file", s.filePath).Error("save last run")
	}
}
