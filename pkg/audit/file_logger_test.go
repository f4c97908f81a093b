package audit

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoggerAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "events.jsonl")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)

	events := []*Event{
		Authentication(context.Background(), EventTypeAuthRegister, EventStatusSuccess, "acct-1", "alice", "registered"),
		Authentication(context.Background(), EventTypeAuthLogin, EventStatusSuccess, "acct-1", "alice", "logged in"),
	}
	for _, e := range events {
		require.NoError(t, logger.Log(context.Background(), e))
	}
	require.NoError(t, logger.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var parsed []*Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		e, err := FromJSON(scanner.Bytes())
		require.NoError(t, err)
		parsed = append(parsed, e)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, parsed, 2)
	assert.Equal(t, EventTypeAuthRegister, parsed[0].EventType)
	assert.Equal(t, EventTypeAuthLogin, parsed[1].EventType)
	assert.Equal(t, "alice", parsed[1].Username)
}

func TestFileLoggerRejectsWriteAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	err = logger.Log(context.Background(), &Event{EventType: EventTypeAuthLogin})
	assert.Error(t, err)

	assert.NoError(t, logger.Close(), "closing twice is harmless")
}

func TestNewFileLoggerRequiresPath(t *testing.T) {
	_, err := NewFileLogger("")
	assert.Error(t, err)
}
