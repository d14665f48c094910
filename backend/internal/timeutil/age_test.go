package timeutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatAgeAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		created  time.Time
		expected string
	}{
		{"zero time", time.Time{}, "0s"},
		{"future clamps to zero", now.Add(30 * time.Second), "0s"},
		{"seconds", now.Add(-45 * time.Second), "45s"},
		{"just under two minutes", now.Add(-119 * time.Second), "119s"},
		{"minutes", now.Add(-5 * time.Minute), "5m"},
		{"hours", now.Add(-3 * time.Hour), "3h"},
		{"days with hours", now.Add(-50 * time.Hour), "2d2h"},
		{"plain days", now.Add(-10 * 24 * time.Hour), "10d"},
		{"months", now.Add(-65 * 24 * time.Hour), "2mo"},
		{"years", now.Add(-2 * 365 * 24 * time.Hour), "2y"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, FormatAgeAt(tc.created, now))
		})
	}
}

func TestSleepWithContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SleepWithContext(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSleepWithContextNilContext(t *testing.T) {
	require.NoError(t, SleepWithContext(nil, time.Millisecond))
}
