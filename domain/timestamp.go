package domain

import (
	"strings"
	"time"
)

// TimestampLayout is the canonical textual form of every timestamp the system exposes:
// UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DateLayout is the calendar-day form used by date buckets.
const DateLayout = "2006-01-02"

// Timestamp is an ISO-8601 instant in canonical form. The zero value means "absent".
type Timestamp string

// NewTimestamp formats t in canonical form.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC().Format(TimestampLayout))
}

// Now returns the current instant in canonical form.
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

// DayOf truncates t to midnight UTC of its calendar day.
func DayOf(t time.Time) Timestamp {
	u := t.UTC()
	return NewTimestamp(time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC))
}

// ParseTimestamp accepts RFC3339 (any precision or offset) or a bare YYYY-MM-DD date and
// returns the canonical form. An empty input yields the zero Timestamp.
func ParseTimestamp(raw string) (Timestamp, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return NewTimestamp(t), nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return NewTimestamp(t), nil
	}
	return "", ErrInvalidTimestamp
}

// ParseDueDate is ParseTimestamp truncated to the UTC day.
func ParseDueDate(raw string) (Timestamp, error) {
	ts, err := ParseTimestamp(raw)
	if err != nil || ts.IsZero() {
		return ts, err
	}
	t, _ := ts.Time()
	return DayOf(t), nil
}

// IsZero reports whether the timestamp is absent.
func (t Timestamp) IsZero() bool {
	return t == ""
}

// Time parses the canonical form back into a time.Time.
func (t Timestamp) Time() (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, string(t))
	if err != nil {
		return time.Time{}, WrapError(ErrCodeInvalid, ErrInvalidTimestamp.Message, err)
	}
	return parsed, nil
}

// Ptr returns nil for the zero Timestamp so optional fields can be stripped.
func (t Timestamp) Ptr() *Timestamp {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (t Timestamp) String() string {
	return string(t)
}

// Before compares two canonical timestamps. Canonical strings sort chronologically.
func (t Timestamp) Before(other Timestamp) bool {
	return string(t) < string(other)
}
