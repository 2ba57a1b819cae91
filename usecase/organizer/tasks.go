package organizer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/workspace"
)

// TaskInput carries the fields of a new task. DueDate accepts RFC3339 or YYYY-MM-DD.
type TaskInput struct {
	BoardID     string
	Title       string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	Tags        []string
	DueDate     string
}

// TaskPatch carries the task fields to change. Nil fields stay as they are; an empty DueDate
// clears it. Position and board never change here.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *domain.Status
	Priority    *domain.Priority
	Tags        *[]string
	DueDate     *string
}

// Tasks lists the live tasks of a board in display order.
func (c *Coordinator) Tasks(boardID string) ([]domain.Task, error) {
	if _, ok := c.ws.Board(boardID); !ok {
		return nil, domain.ErrBoardNotFound
	}
	return c.ws.Tasks(boardID), nil
}

func (c *Coordinator) ArchivedTasks() []domain.Task {
	return c.ws.ArchivedTasks()
}

func (c *Coordinator) Task(id string) (domain.Task, error) {
	t, ok := c.ws.Task(id)
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return t, nil
}

// CreateTask appends a task at the end of its board.
func (c *Coordinator) CreateTask(ctx context.Context, in TaskInput) (domain.Task, error) {
	due, err := domain.ParseDueDate(in.DueDate)
	if err != nil {
		return domain.Task{}, err
	}

	var created domain.Task
	_, err = c.commit(ctx, func(tx *workspace.Tx) error {
		board, ok := tx.Board(in.BoardID)
		if !ok || board.IsArchived {
			return domain.ErrBoardNotFound
		}
		now := c.now()
		t := domain.Task{
			ID:          c.newID(),
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			Priority:    in.Priority,
			Tags:        in.Tags,
			DueDate:     due,
			BoardID:     board.ID,
			Order:       tx.Snapshot().NextTaskOrder(board.ID),
			CreatedAt:   now,
		}
		t.ApplyDefaults()
		if in.Status != "" {
			t.SetStatus(in.Status, now)
		}
		if err := domain.Validate(t); err != nil {
			return err
		}
		tx.Put(t)
		created = t
		return nil
	})
	if err == nil {
		c.logger.Info("task created", zap.String("task_id", created.ID), zap.String("board_id", created.BoardID))
	}
	return created, err
}

// UpdateTask edits task content. Entering or leaving completed keeps completedAt in step.
func (c *Coordinator) UpdateTask(ctx context.Context, id string, patch TaskPatch) (domain.Task, error) {
	var due *domain.Timestamp
	if patch.DueDate != nil {
		parsed, err := domain.ParseDueDate(*patch.DueDate)
		if err != nil {
			return domain.Task{}, err
		}
		due = &parsed
	}

	var updated domain.Task
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		t, ok := tx.Task(id)
		if !ok {
			return domain.ErrTaskNotFound
		}
		if patch.Title != nil {
			t.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.Tags != nil {
			t.Tags = domain.NormalizeTags(*patch.Tags)
		}
		if due != nil {
			t.DueDate = *due
		}
		if patch.Status != nil {
			t.SetStatus(*patch.Status, c.now())
		}
		if err := domain.Validate(t); err != nil {
			return err
		}
		tx.Put(t)
		updated = t
		return nil
	})
	return updated, err
}

// ArchiveTask hides a task. Its siblings keep their orders.
func (c *Coordinator) ArchiveTask(ctx context.Context, id string) (domain.Task, error) {
	var result domain.Task
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		t, ok := tx.Task(id)
		if !ok {
			return domain.ErrTaskNotFound
		}
		if !t.Archived {
			t.Archived = true
			t.ArchivedAt = c.now()
			tx.Put(t)
		}
		result = t
		return nil
	})
	return result, err
}

// RestoreTask brings an archived task back at the end of its board.
func (c *Coordinator) RestoreTask(ctx context.Context, id string) (domain.Task, error) {
	var result domain.Task
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		t, ok := tx.Task(id)
		if !ok {
			return domain.ErrTaskNotFound
		}
		result = t
		if !t.Archived {
			return nil
		}
		if _, ok := tx.Board(t.BoardID); !ok {
			return domain.ErrBoardNotFound
		}
		t.Order = tx.Snapshot().NextTaskOrder(t.BoardID)
		t.Archived = false
		t.ArchivedAt = ""
		tx.Put(t)
		result = t
		return nil
	})
	return result, err
}

// DuplicateTask copies a task to the end of the same board.
func (c *Coordinator) DuplicateTask(ctx context.Context, id string) (domain.Task, error) {
	var dup domain.Task
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		src, ok := tx.Task(id)
		if !ok || src.Archived {
			return domain.ErrTaskNotFound
		}
		dup = src.Clone()
		dup.ID = c.newID()
		dup.Title = src.Title + copySuffix
		dup.Order = tx.Snapshot().NextTaskOrder(src.BoardID)
		dup.CreatedAt = c.now()
		tx.Put(dup)
		return nil
	})
	return dup, err
}

// DeleteTask removes a task and closes the gap among its live siblings.
func (c *Coordinator) DeleteTask(ctx context.Context, id string) error {
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		t, ok := tx.Task(id)
		if !ok {
			return domain.ErrTaskNotFound
		}
		siblings := tx.Snapshot().SiblingTasks(t.BoardID)
		tx.Delete(domain.RefOf(t))
		if t.Archived {
			return nil
		}
		i := 0
		for _, s := range siblings {
			if s.ID == t.ID {
				continue
			}
			if s.Order != i {
				s.Order = i
				tx.Put(s)
			}
			i++
		}
		return nil
	})
	return err
}
