package domain

// SessionKind distinguishes focus blocks from breaks.
type SessionKind string

const (
	SessionFocus SessionKind = "focus"
	SessionBreak SessionKind = "break"
)

// Session represents a timed work session, optionally attached to a task.
type Session struct {
	ID              string      `json:"id" validate:"required"`
	TaskID          string      `json:"taskId,omitempty"`
	Kind            SessionKind `json:"kind" validate:"required,oneof=focus break"`
	StartedAt       Timestamp   `json:"startedAt" validate:"required"`
	EndedAt         Timestamp   `json:"endedAt,omitempty"`
	DurationMinutes int         `json:"durationMinutes" validate:"gte=0"`
}

// IsRunning reports whether the session has not been stopped yet.
func (s *Session) IsRunning() bool {
	return s != nil && s.EndedAt.IsZero()
}

// ApplyDefaults fills absent optional fields with their defaults.
func (s *Session) ApplyDefaults() {
	if s != nil && s.Kind == "" {
		s.Kind = SessionFocus
	}
}

func (s Session) RecordKind() Kind {
	return KindSession
}

func (s Session) RecordID() string {
	return s.ID
}
