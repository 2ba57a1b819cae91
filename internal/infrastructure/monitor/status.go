package monitor

import "time"

type Status struct {
	Backend   string    `json:"backend"`
	Online    bool      `json:"online"`
	Fallback  bool      `json:"fallback"`
	LastError string    `json:"last_error,omitempty"`
	LastCheck time.Time `json:"last_check"`
}

// Healthy is true when the gateway answers and no fallback store is in use.
func (s Status) Healthy() bool {
	return s.Online && !s.Fallback
}
