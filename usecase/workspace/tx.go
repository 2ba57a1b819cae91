package workspace

import (
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/placement"
)

// Change is the net effect of one Update, in the order records were first touched.
type Change struct {
	Put     []domain.Record
	Deleted []domain.Ref
}

// Empty reports whether nothing was written.
func (c Change) Empty() bool {
	return len(c.Put) == 0 && len(c.Deleted) == 0
}

// Refs lists every touched record.
func (c Change) Refs() []domain.Ref {
	refs := make([]domain.Ref, 0, len(c.Put)+len(c.Deleted))
	for _, r := range c.Put {
		refs = append(refs, domain.RefOf(r))
	}
	return append(refs, c.Deleted...)
}

type undo struct {
	ref     domain.Ref
	existed bool
	prev    domain.Record
}

// Tx is the write view handed to Update callbacks. It is only valid inside the callback.
type Tx struct {
	w       *Workspace
	log     []undo
	order   []domain.Ref
	touched map[domain.Ref]struct{}
}

// Snapshot reflects every write staged so far.
func (tx *Tx) Snapshot() *domain.Snapshot {
	return tx.w.snapshot()
}

func (tx *Tx) Board(id string) (domain.Board, bool) {
	b, ok := tx.w.boards[id]
	return b, ok
}

// Task returns a task whether archived or not.
func (tx *Tx) Task(id string) (domain.Task, bool) {
	t, ok := tx.w.tasks[id]
	return t.Clone(), ok
}

// TasksOf returns every task of a board, archived ones included.
func (tx *Tx) TasksOf(boardID string) []domain.Task {
	var out []domain.Task
	for _, t := range tx.w.tasks {
		if t.BoardID == boardID {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (tx *Tx) Session(id string) (domain.Session, bool) {
	s, ok := tx.w.sessions[id]
	return s, ok
}

// RunningSessions returns the sessions that have not been stopped.
func (tx *Tx) RunningSessions() []domain.Session {
	var out []domain.Session
	for _, s := range tx.w.sessions {
		if s.IsRunning() {
			out = append(out, s)
		}
	}
	return out
}

func (tx *Tx) Settings() domain.Settings {
	return tx.w.settings
}

func (tx *Tx) current(ref domain.Ref) (domain.Record, bool) {
	switch ref.Kind {
	case domain.KindBoard:
		b, ok := tx.w.boards[ref.ID]
		return b, ok
	case domain.KindTask:
		t, ok := tx.w.tasks[ref.ID]
		return t.Clone(), ok
	case domain.KindSession:
		s, ok := tx.w.sessions[ref.ID]
		return s, ok
	case domain.KindSettings:
		return tx.w.settings, true
	}
	return nil, false
}

func (tx *Tx) remember(ref domain.Ref) {
	if _, seen := tx.touched[ref]; seen {
		return
	}
	prev, existed := tx.current(ref)
	tx.log = append(tx.log, undo{ref: ref, existed: existed, prev: prev})
	tx.touched[ref] = struct{}{}
	tx.order = append(tx.order, ref)
}

// Put stages an upsert of a value record (domain.Board, not *domain.Board).
func (tx *Tx) Put(record domain.Record) {
	tx.remember(domain.RefOf(record))
	tx.write(record)
}

// Delete stages a removal. Deleting a missing record is allowed. The settings singleton
// cannot be removed; deleting it restores the defaults.
func (tx *Tx) Delete(ref domain.Ref) {
	if ref.Kind == domain.KindSettings {
		tx.Put(*domain.DefaultSettings())
		return
	}
	tx.remember(ref)
	tx.erase(ref)
}

func (tx *Tx) write(record domain.Record) {
	switch r := record.(type) {
	case domain.Board:
		tx.w.boards[r.ID] = r
	case domain.Task:
		tx.w.tasks[r.ID] = r.Clone()
	case domain.Session:
		tx.w.sessions[r.ID] = r
	case domain.Settings:
		tx.w.settings = r
	}
}

func (tx *Tx) erase(ref domain.Ref) {
	switch ref.Kind {
	case domain.KindBoard:
		delete(tx.w.boards, ref.ID)
	case domain.KindTask:
		delete(tx.w.tasks, ref.ID)
	case domain.KindSession:
		delete(tx.w.sessions, ref.ID)
	}
}

// ApplyPlan patches every record the plan addresses. A missing record fails the whole plan.
func (tx *Tx) ApplyPlan(plan placement.Plan) error {
	for _, m := range plan.Mutations {
		switch m.Ref.Kind {
		case domain.KindBoard:
			b, ok := tx.Board(m.Ref.ID)
			if !ok {
				return domain.ErrRecordNotFound
			}
			m.Patch.ApplyBoard(&b)
			tx.Put(b)
		case domain.KindTask:
			t, ok := tx.Task(m.Ref.ID)
			if !ok {
				return domain.ErrRecordNotFound
			}
			m.Patch.ApplyTask(&t)
			tx.Put(t)
		default:
			return domain.ErrRecordNotFound
		}
	}
	return nil
}

func (tx *Tx) rollback() {
	for i := len(tx.log) - 1; i >= 0; i-- {
		u := tx.log[i]
		if u.existed {
			tx.write(u.prev)
		} else {
			tx.erase(u.ref)
		}
	}
}

func (tx *Tx) change() Change {
	var c Change
	for _, ref := range tx.order {
		if rec, ok := tx.current(ref); ok {
			c.Put = append(c.Put, rec)
			continue
		}
		c.Deleted = append(c.Deleted, ref)
	}
	return c
}
