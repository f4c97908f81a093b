package audit

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uth-confms/confms/pkg/observability"
)

type fakeCleaner struct {
	mu      sync.Mutex
	calls   int
	policy  RetentionPolicy
	deleted int64
	err     error
}

func (c *fakeCleaner) Cleanup(_ context.Context, policy RetentionPolicy) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.policy = policy
	return c.deleted, c.err
}

func testSweeperLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func TestRetentionSweeperDisabledPolicy(t *testing.T) {
	cleaner := &fakeCleaner{}
	sweeper := NewRetentionSweeper(cleaner, RetentionPolicy{Enabled: false}, testSweeperLogger())

	require.NoError(t, sweeper.Start("0 3 * * *"))
	sweeper.Stop()

	assert.Equal(t, 0, cleaner.calls)
}

func TestRetentionSweeperInvalidSchedule(t *testing.T) {
	cleaner := &fakeCleaner{}
	sweeper := NewRetentionSweeper(cleaner, DefaultRetentionPolicy(), testSweeperLogger())

	err := sweeper.Start("not a schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule")
}

func TestRetentionSweeperSweepPassesPolicy(t *testing.T) {
	cleaner := &fakeCleaner{deleted: 42}
	policy := RetentionPolicy{Enabled: true, RetentionDays: 30}
	sweeper := NewRetentionSweeper(cleaner, policy, testSweeperLogger())

	sweeper.sweep()

	assert.Equal(t, 1, cleaner.calls)
	assert.Equal(t, policy, cleaner.policy)
}

func TestRetentionSweeperSweepError(t *testing.T) {
	cleaner := &fakeCleaner{err: errors.New("db down")}
	sweeper := NewRetentionSweeper(cleaner, DefaultRetentionPolicy(), testSweeperLogger())

	// Must not panic on cleaner failure.
	sweeper.sweep()

	assert.Equal(t, 1, cleaner.calls)
}

func TestRetentionSweeperStartStop(t *testing.T) {
	cleaner := &fakeCleaner{}
	sweeper := NewRetentionSweeper(cleaner, DefaultRetentionPolicy(), testSweeperLogger())

	require.NoError(t, sweeper.Start("0 3 * * *"))
	sweeper.Stop()
}
