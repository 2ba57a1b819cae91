package placement

import (
	"fmt"

	"github.com/fastygo/taskboard/domain"
)

// ItemKind says what is being dragged.
type ItemKind string

const (
	ItemBoard ItemKind = "board"
	ItemTask  ItemKind = "task"
)

// Gesture is one completed drag: the dragged record, where it came from, where it was
// dropped and the requested position inside the destination.
type Gesture struct {
	Item        ItemKind
	ItemID      string
	Source      domain.ContainerRef
	Destination domain.ContainerRef
	Index       int
}

// Operation is the kind of change a gesture resolves to.
type Operation int

const (
	OpNone Operation = iota
	OpBoardReorder
	OpSameContainerReorder
	OpCrossContainerMove
	OpFieldRewriteStatus
	OpFieldRewriteDueDate
)

func (o Operation) String() string {
	switch o {
	case OpBoardReorder:
		return "board_reorder"
	case OpSameContainerReorder:
		return "same_container_reorder"
	case OpCrossContainerMove:
		return "cross_container_move"
	case OpFieldRewriteStatus:
		return "field_rewrite_status"
	case OpFieldRewriteDueDate:
		return "field_rewrite_due_date"
	default:
		return "none"
	}
}

// Classify decides which operation a gesture performs against snap. It never mutates snap.
func Classify(snap *domain.Snapshot, g Gesture) (Operation, error) {
	switch g.Item {
	case ItemBoard:
		return classifyBoard(snap, g)
	case ItemTask:
		return classifyTask(snap, g)
	default:
		return OpNone, domain.WrapError(domain.ErrCodeNotFound, domain.ErrRecordNotFound.Message,
			fmt.Errorf("unknown item kind %q", g.Item))
	}
}

func classifyBoard(snap *domain.Snapshot, g Gesture) (Operation, error) {
	board, ok := snap.Board(g.ItemID)
	if !ok || board.IsArchived {
		return OpNone, domain.ErrRecordNotFound
	}
	dest := g.Destination
	if dest.Kind() != domain.ContainerBoardList || dest.ParentID() != board.ParentID {
		return OpNone, domain.WrapError(domain.ErrCodeDestinationNotFound, domain.ErrDestinationNotFound.Message,
			fmt.Errorf("board %s cannot be dropped on %s", board.ID, dest))
	}
	return OpBoardReorder, nil
}

func classifyTask(snap *domain.Snapshot, g Gesture) (Operation, error) {
	task, ok := snap.Task(g.ItemID)
	if !ok || task.Archived {
		return OpNone, domain.ErrRecordNotFound
	}
	dest := g.Destination
	switch dest.Kind() {
	case domain.ContainerBoard:
		board, ok := snap.Board(dest.BoardID())
		if !ok || board.IsArchived {
			return OpNone, domain.ErrDestinationNotFound
		}
		if board.ID == task.BoardID {
			return OpSameContainerReorder, nil
		}
		return OpCrossContainerMove, nil
	case domain.ContainerStatus:
		return OpFieldRewriteStatus, nil
	case domain.ContainerDate:
		return OpFieldRewriteDueDate, nil
	default:
		return OpNone, domain.WrapError(domain.ErrCodeDestinationNotFound, domain.ErrDestinationNotFound.Message,
			fmt.Errorf("task %s cannot be dropped on %s", task.ID, dest))
	}
}
