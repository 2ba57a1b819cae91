package organizer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/workspace"
)

const copySuffix = " (copy)"

// BoardInput carries the fields of a new board.
type BoardInput struct {
	Title      string
	ParentID   string
	IsFavorite bool
}

// BoardPatch carries the board fields to change. Nil fields stay as they are; an empty
// ParentID moves the board to the top level.
type BoardPatch struct {
	Title      *string
	ParentID   *string
	IsFavorite *bool
	Collapsed  *bool
}

// Boards lists every board.
func (c *Coordinator) Boards() []domain.Board {
	return c.ws.Boards()
}

func (c *Coordinator) Board(id string) (domain.Board, error) {
	b, ok := c.ws.Board(id)
	if !ok {
		return domain.Board{}, domain.ErrBoardNotFound
	}
	return b, nil
}

// CreateBoard appends a board at the end of its scope.
func (c *Coordinator) CreateBoard(ctx context.Context, in BoardInput) (domain.Board, error) {
	var created domain.Board
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		snap := tx.Snapshot()
		b := domain.Board{
			ID:         c.newID(),
			Title:      strings.TrimSpace(in.Title),
			ParentID:   in.ParentID,
			IsFavorite: in.IsFavorite,
			CreatedAt:  c.now(),
		}
		if err := snap.ValidateNesting(b); err != nil {
			return err
		}
		b.Order = snap.NextBoardOrder(b.ParentID)
		if err := domain.Validate(b); err != nil {
			return err
		}
		tx.Put(b)
		created = b
		return nil
	})
	if err == nil {
		c.logger.Info("board created", zap.String("board_id", created.ID))
	}
	return created, err
}

// UpdateBoard edits a board. Moving it to another parent appends it there and closes the gap
// it leaves behind.
func (c *Coordinator) UpdateBoard(ctx context.Context, id string, patch BoardPatch) (domain.Board, error) {
	var updated domain.Board
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		b, ok := tx.Board(id)
		if !ok {
			return domain.ErrBoardNotFound
		}
		if patch.Title != nil {
			b.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.IsFavorite != nil {
			b.IsFavorite = *patch.IsFavorite
		}
		if patch.Collapsed != nil {
			b.Collapsed = *patch.Collapsed
		}
		if patch.ParentID != nil && *patch.ParentID != b.ParentID {
			snap := tx.Snapshot()
			oldParent := b.ParentID
			b.ParentID = *patch.ParentID
			if err := snap.ValidateNesting(b); err != nil {
				return err
			}
			b.Order = snap.NextBoardOrder(b.ParentID)
			compactBoards(tx, snap.SiblingBoards(oldParent), b.ID)
		}
		if err := domain.Validate(b); err != nil {
			return err
		}
		tx.Put(b)
		updated = b
		return nil
	})
	return updated, err
}

// compactBoards renumbers siblings 0..n-1 without the excluded board.
func compactBoards(tx *workspace.Tx, siblings []domain.Board, exclude string) {
	i := 0
	for _, s := range siblings {
		if s.ID == exclude {
			continue
		}
		if s.Order != i {
			s.Order = i
			tx.Put(s)
		}
		i++
	}
}

// ArchiveBoard hides a board from drag targets. Sibling orders are left untouched.
func (c *Coordinator) ArchiveBoard(ctx context.Context, id string) (domain.Board, error) {
	return c.setBoardArchived(ctx, id, true)
}

// RestoreBoard brings a board back at the end of its scope. A board whose parent is gone
// returns at the top level.
func (c *Coordinator) RestoreBoard(ctx context.Context, id string) (domain.Board, error) {
	return c.setBoardArchived(ctx, id, false)
}

func (c *Coordinator) setBoardArchived(ctx context.Context, id string, archived bool) (domain.Board, error) {
	var result domain.Board
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		b, ok := tx.Board(id)
		if !ok {
			return domain.ErrBoardNotFound
		}
		result = b
		if b.IsArchived == archived {
			return nil
		}
		if !archived {
			if _, ok := tx.Board(b.ParentID); b.ParentID != "" && !ok {
				b.ParentID = ""
			}
			b.Order = tx.Snapshot().NextBoardOrder(b.ParentID)
		}
		b.IsArchived = archived
		tx.Put(b)
		result = b
		return nil
	})
	return result, err
}

// DuplicateBoard copies a board and its live tasks. Sub-boards are not copied.
func (c *Coordinator) DuplicateBoard(ctx context.Context, id string) (domain.Board, error) {
	var dup domain.Board
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		src, ok := tx.Board(id)
		if !ok {
			return domain.ErrBoardNotFound
		}
		snap := tx.Snapshot()
		now := c.now()
		dup = src
		dup.ID = c.newID()
		dup.Title = src.Title + copySuffix
		dup.IsArchived = false
		dup.CreatedAt = now
		dup.Order = snap.NextBoardOrder(src.ParentID)
		tx.Put(dup)

		for i, t := range snap.SiblingTasks(src.ID) {
			cp := t.Clone()
			cp.ID = c.newID()
			cp.BoardID = dup.ID
			cp.Order = i
			cp.CreatedAt = now
			tx.Put(cp)
		}
		return nil
	})
	return dup, err
}

// DeleteBoard removes a board together with its sub-boards and every task they hold.
func (c *Coordinator) DeleteBoard(ctx context.Context, id string) error {
	change, err := c.commit(ctx, func(tx *workspace.Tx) error {
		b, ok := tx.Board(id)
		if !ok {
			return domain.ErrBoardNotFound
		}
		snap := tx.Snapshot()
		doomed := append([]domain.Board{b}, snap.ChildBoards(b.ID)...)
		for _, d := range doomed {
			for _, t := range tx.TasksOf(d.ID) {
				tx.Delete(domain.RefOf(t))
			}
			tx.Delete(domain.RefOf(d))
		}
		compactBoards(tx, snap.SiblingBoards(b.ParentID), b.ID)
		return nil
	})
	if err == nil {
		c.logger.Info("board deleted", zap.String("board_id", id), zap.Int("records", len(change.Deleted)))
	}
	return err
}
