package backend

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerCapsEntries(t *testing.T) {
	logger := NewLogger(3)
	for i := 0; i < 5; i++ {
		logger.Info(fmt.Sprintf("message-%d", i))
	}

	entries := logger.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, "message-2", entries[0].Message)
	require.Equal(t, "message-4", entries[2].Message)
}

func TestLoggerLevelsAndSource(t *testing.T) {
	logger := NewLogger(10)
	logger.Warn("slow stream", "StreamClient")
	logger.Error("fetch failed")

	entries := logger.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "WARN", entries[0].Level)
	require.Equal(t, "StreamClient", entries[0].Source)
	require.Equal(t, "ERROR", entries[1].Level)
	require.Empty(t, entries[1].Source)
}

func TestLoggerOnEntryCallback(t *testing.T) {
	logger := NewLogger(10)
	var seen []string
	logger.SetOnEntry(func(entry LogEntry) {
		seen = append(seen, entry.Message)
	})

	logger.Debug("one")
	logger.Info("two")
	require.Equal(t, []string{"one", "two"}, seen)
}

func TestLoggerNilSafe(t *testing.T) {
	var logger *Logger
	logger.Info("ignored")
	require.Nil(t, logger.Entries())
}
