package postgres

import (
	"time"

	"github.com/fastygo/taskboard/domain"
)

// nullTime maps an absent timestamp to SQL NULL.
func nullTime(ts domain.Timestamp) (interface{}, error) {
	if ts.IsZero() {
		return nil, nil
	}
	t, err := ts.Time()
	if err != nil {
		return nil, err
	}
	return t, nil
}

func fromTime(t *time.Time) domain.Timestamp {
	if t == nil || t.IsZero() {
		return ""
	}
	return domain.NewTimestamp(*t)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func fromString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// times converts a list of timestamps, stopping at the first malformed one.
func times(src ...domain.Timestamp) ([]interface{}, error) {
	out := make([]interface{}, len(src))
	for i, ts := range src {
		v, err := nullTime(ts)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
