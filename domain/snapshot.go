package domain

import "sort"

// Snapshot is a point-in-time copy of the board and task collections.
type Snapshot struct {
	Boards map[string]Board
	Tasks  map[string]Task
}

// NewSnapshot indexes the given records by id.
func NewSnapshot(boards []Board, tasks []Task) *Snapshot {
	snap := &Snapshot{
		Boards: make(map[string]Board, len(boards)),
		Tasks:  make(map[string]Task, len(tasks)),
	}
	for _, b := range boards {
		snap.Boards[b.ID] = b
	}
	for _, t := range tasks {
		snap.Tasks[t.ID] = t.Clone()
	}
	return snap
}

func (s *Snapshot) Board(id string) (Board, bool) {
	if s == nil {
		return Board{}, false
	}
	b, ok := s.Boards[id]
	return b, ok
}

func (s *Snapshot) Task(id string) (Task, bool) {
	if s == nil {
		return Task{}, false
	}
	t, ok := s.Tasks[id]
	return t, ok
}

// SiblingBoards returns the non-archived boards under parentID in display order.
func (s *Snapshot) SiblingBoards(parentID string) []Board {
	if s == nil {
		return nil
	}
	var out []Board
	for _, b := range s.Boards {
		if b.ParentID == parentID && !b.IsArchived {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lessPosition(out[i].Order, out[i].CreatedAt, out[i].ID, out[j].Order, out[j].CreatedAt, out[j].ID)
	})
	return out
}

// SiblingTasks returns the non-archived tasks of a board in display order.
func (s *Snapshot) SiblingTasks(boardID string) []Task {
	if s == nil {
		return nil
	}
	var out []Task
	for _, t := range s.Tasks {
		if t.BoardID == boardID && !t.Archived {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lessPosition(out[i].Order, out[i].CreatedAt, out[i].ID, out[j].Order, out[j].CreatedAt, out[j].ID)
	})
	return out
}

// ChildBoards returns every board, archived or not, whose parent is id.
func (s *Snapshot) ChildBoards(id string) []Board {
	if s == nil || id == "" {
		return nil
	}
	var out []Board
	for _, b := range s.Boards {
		if b.ParentID == id {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NextBoardOrder is the append-to-end position in a parent scope.
func (s *Snapshot) NextBoardOrder(parentID string) int {
	siblings := s.SiblingBoards(parentID)
	next := len(siblings)
	for _, b := range siblings {
		if b.Order >= next {
			next = b.Order + 1
		}
	}
	return next
}

// NextTaskOrder is the append-to-end position in a board. It equals the sibling count unless
// archival left gaps that would make the count collide with a live order value.
func (s *Snapshot) NextTaskOrder(boardID string) int {
	siblings := s.SiblingTasks(boardID)
	next := len(siblings)
	for _, t := range siblings {
		if t.Order >= next {
			next = t.Order + 1
		}
	}
	return next
}

func lessPosition(oa int, ca Timestamp, ia string, ob int, cb Timestamp, ib string) bool {
	if oa != ob {
		return oa < ob
	}
	if ca != cb {
		return ca.Before(cb)
	}
	return ia < ib
}

// ValidateNesting rejects a board placement that would nest deeper than one level.
func (s *Snapshot) ValidateNesting(board Board) error {
	if board.ParentID == "" {
		return nil
	}
	if board.ParentID == board.ID {
		return ErrInvalidNesting
	}
	parent, ok := s.Board(board.ParentID)
	if !ok {
		return ErrBoardNotFound
	}
	if parent.ParentID != "" {
		return ErrInvalidNesting
	}
	if len(s.ChildBoards(board.ID)) > 0 {
		return ErrInvalidNesting
	}
	return nil
}
