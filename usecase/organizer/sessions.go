package organizer

import (
	"context"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/workspace"
)

// SessionInput starts a focus or break session, optionally attached to a task.
type SessionInput struct {
	TaskID string
	Kind   domain.SessionKind
}

func (c *Coordinator) Sessions() []domain.Session {
	return c.ws.Sessions()
}

// StartSession opens a session. Any session still running is stopped first so only one runs
// at a time.
func (c *Coordinator) StartSession(ctx context.Context, in SessionInput) (domain.Session, error) {
	var started domain.Session
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		if in.TaskID != "" {
			if _, ok := tx.Task(in.TaskID); !ok {
				return domain.ErrTaskNotFound
			}
		}
		now := c.now()
		for _, running := range tx.RunningSessions() {
			if err := stop(&running, now); err != nil {
				return err
			}
			tx.Put(running)
		}
		s := domain.Session{
			ID:        c.newID(),
			TaskID:    in.TaskID,
			Kind:      in.Kind,
			StartedAt: now,
		}
		s.ApplyDefaults()
		if err := domain.Validate(s); err != nil {
			return err
		}
		tx.Put(s)
		started = s
		return nil
	})
	return started, err
}

// StopSession ends a running session and records its length in whole minutes. Stopping a
// stopped session changes nothing.
func (c *Coordinator) StopSession(ctx context.Context, id string) (domain.Session, error) {
	var result domain.Session
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		s, ok := tx.Session(id)
		if !ok {
			return domain.ErrSessionNotFound
		}
		result = s
		if !s.IsRunning() {
			return nil
		}
		if err := stop(&s, c.now()); err != nil {
			return err
		}
		tx.Put(s)
		result = s
		return nil
	})
	return result, err
}

func stop(s *domain.Session, now domain.Timestamp) error {
	start, err := s.StartedAt.Time()
	if err != nil {
		return err
	}
	end, err := now.Time()
	if err != nil {
		return err
	}
	s.EndedAt = now
	if minutes := int(end.Sub(start).Minutes()); minutes > 0 {
		s.DurationMinutes = minutes
	}
	return nil
}

// DeleteSession removes a session. Deleting an unknown id is not an error.
func (c *Coordinator) DeleteSession(ctx context.Context, id string) error {
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		tx.Delete(domain.Ref{Kind: domain.KindSession, ID: id})
		return nil
	})
	return err
}
