package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"VixPull/internal/model"
	"VixPull/internal/runstate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (m *memNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	return nil
}

func (m *memNotifier) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func TestRegister(t *testing.T) {
	s := NewScheduler(context.Background(), func(context.Context) (model.RunSummary, error) {
		return model.RunSummary{}, nil
	}, nil)

	require.NoError(t, s.Register("0 30 22 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.Register("30 22 * *"))
}

func TestRunNow_RecordsAndNotifies(t *testing.T) {
	n := &memNotifier{}
	s := NewScheduler(context.Background(), func(context.Context) (model.RunSummary, error) {
		return model.RunSummary{RunID: "r1", Records: 5, BusinessDays: 5, Written: true, Output: "out.csv"}, nil
	}, n)

	last, _ := s.Last()
	assert.Nil(t, last)

	summary, err := s.RunNow()
	require.NoError(t, err)
	assert.Equal(t, "r1", summary.RunID)

	last, lastErr := s.Last()
	require.NotNil(t, last)
	assert.NoError(t, lastErr)
	assert.Equal(t, 5, last.Records)

	msgs := n.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "VIX pull finished")
	assert.Contains(t, msgs[0], "out.csv")
}

func TestRunNow_FailureIsReported(t *testing.T) {
	n := &memNotifier{}
	boom := errors.New("fetch 2023-01-04: data protection hit")
	s := NewScheduler(context.Background(), func(context.Context) (model.RunSummary, error) {
		return model.RunSummary{RunID: "r2", HaltReason: boom.Error()}, boom
	}, n)

	_, err := s.RunNow()
	assert.ErrorIs(t, err, boom)

	last, lastErr := s.Last()
	require.NotNil(t, last)
	assert.ErrorIs(t, lastErr, boom)
	require.Len(t, n.messages(), 1)
	assert.Contains(t, n.messages()[0], "halted")
}

func TestRunNow_Busy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s := NewScheduler(context.Background(), func(context.Context) (model.RunSummary, error) {
		close(started)
		<-release
		return model.RunSummary{}, nil
	}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow()
		done <- err
	}()
	<-started

	_, err := s.RunNow()
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, ErrBusy.Error(), s.HandleCommand("/pull"))

	close(release)
	require.NoError(t, <-done)
}

func TestHandleCommand(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	s := NewScheduler(context.Background(), func(context.Context) (model.RunSummary, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return model.RunSummary{RunID: "r3"}, nil
	}, nil)

	assert.Equal(t, "No pull has run yet.", s.HandleCommand("/status"))
	assert.Contains(t, s.HandleCommand("/help"), "/pull")

	assert.Equal(t, "Pull started.", s.HandleCommand("/pull"))
	assert.Eventually(t, func() bool {
		last, _ := s.Last()
		return last != nil
	}, time.Second, 10*time.Millisecond)

	assert.Contains(t, s.HandleCommand("/status"), "r3")
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestLast_RestoredFromState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run.json")
	store, err := runstate.NewStore(path)
	require.NoError(t, err)

	s := NewScheduler(context.Background(), func(context.Context) (model.RunSummary, error) {
		return model.RunSummary{RunID: "before-restart"}, errors.New("boom")
	}, nil)
	s.State = store
	_, _ = s.RunNow()

	reloaded, err := runstate.NewStore(path)
	require.NoError(t, err)
	restarted := NewScheduler(context.Background(), nil, nil)
	restarted.State = reloaded

	last, lastErr := restarted.Last()
	require.NotNil(t, last)
	assert.Equal(t, "before-restart", last.RunID)
	assert.EqualError(t, lastErr, "boom")
	assert.Contains(t, restarted.HandleCommand("/status"), "before-restart")
}
