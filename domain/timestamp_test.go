package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampCanonicalizes(t *testing.T) {
	cases := map[string]string{
		"2026-03-01T10:20:30Z":          "2026-03-01T10:20:30.000Z",
		"2026-03-01T10:20:30.5+02:00":   "2026-03-01T08:20:30.500Z",
		"2026-03-01T10:20:30.123456789Z": "2026-03-01T10:20:30.123Z",
		"2026-03-01":                    "2026-03-01T00:00:00.000Z",
	}
	for in, want := range cases {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.Equal(t, Timestamp(want), got, in)
	}
}

func TestParseTimestampEmptyAndInvalid(t *testing.T) {
	ts, err := ParseTimestamp("  ")
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	_, err = ParseTimestamp("yesterday")
	require.ErrorIs(t, err, ErrInvalidTimestamp)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

func TestParseDueDateTruncatesToDay(t *testing.T) {
	got, err := ParseDueDate("2026-03-01T23:59:59Z")
	require.NoError(t, err)
	assert.Equal(t, Timestamp("2026-03-01T00:00:00.000Z"), got)
}

func TestTimestampRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	ts := NewTimestamp(now)
	assert.Equal(t, Timestamp("2026-01-02T03:04:05.006Z"), ts)

	back, err := ts.Time()
	require.NoError(t, err)
	assert.True(t, back.Equal(now))
	assert.Equal(t, ts, NewTimestamp(back))
}

func TestTimestampOrdering(t *testing.T) {
	a := NewTimestamp(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	b := NewTimestamp(time.Date(2026, 1, 1, 0, 0, 0, 1_000_000, time.UTC))
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.Nil(t, Timestamp("").Ptr())
	assert.NotNil(t, a.Ptr())
}
