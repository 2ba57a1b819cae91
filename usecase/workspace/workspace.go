package workspace

import (
	"sort"
	"sync"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/placement"
)

// Workspace owns the in-memory collections. Readers get copies; writers go through Update so
// a change is either fully visible or not at all.
type Workspace struct {
	mu       sync.RWMutex
	boards   map[string]domain.Board
	tasks    map[string]domain.Task
	sessions map[string]domain.Session
	settings domain.Settings
}

// New returns an empty workspace with default settings.
func New() *Workspace {
	return &Workspace{
		boards:   map[string]domain.Board{},
		tasks:    map[string]domain.Task{},
		sessions: map[string]domain.Session{},
		settings: *domain.DefaultSettings(),
	}
}

// State is everything the workspace holds, as loaded from or handed to a gateway.
type State struct {
	Boards   []domain.Board
	Tasks    []domain.Task
	Sessions []domain.Session
	Settings *domain.Settings
}

// Load replaces the whole state.
func (w *Workspace) Load(state State) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.boards = make(map[string]domain.Board, len(state.Boards))
	for _, b := range state.Boards {
		w.boards[b.ID] = b
	}
	w.tasks = make(map[string]domain.Task, len(state.Tasks))
	for _, t := range state.Tasks {
		w.tasks[t.ID] = t.Clone()
	}
	w.sessions = make(map[string]domain.Session, len(state.Sessions))
	for _, s := range state.Sessions {
		w.sessions[s.ID] = s
	}
	w.settings = *domain.DefaultSettings()
	if state.Settings != nil {
		w.settings = *state.Settings
		w.settings.ApplyDefaults()
	}
}

// Snapshot copies boards and tasks, archived ones included.
func (w *Workspace) Snapshot() *domain.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot()
}

func (w *Workspace) snapshot() *domain.Snapshot {
	boards := make([]domain.Board, 0, len(w.boards))
	for _, b := range w.boards {
		boards = append(boards, b)
	}
	tasks := make([]domain.Task, 0, len(w.tasks))
	for _, t := range w.tasks {
		tasks = append(tasks, t)
	}
	return domain.NewSnapshot(boards, tasks)
}

// Boards lists every board by scope, then display position.
func (w *Workspace) Boards() []domain.Board {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]domain.Board, 0, len(w.boards))
	for _, b := range w.boards {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ParentID != out[j].ParentID {
			return out[i].ParentID < out[j].ParentID
		}
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (w *Workspace) Board(id string) (domain.Board, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.boards[id]
	return b, ok
}

func (w *Workspace) Task(id string) (domain.Task, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.tasks[id]
	return t.Clone(), ok
}

// Tasks lists the live tasks of a board in display order.
func (w *Workspace) Tasks(boardID string) []domain.Task {
	return w.Snapshot().SiblingTasks(boardID)
}

// ArchivedTasks lists archived tasks, most recently archived first.
func (w *Workspace) ArchivedTasks() []domain.Task {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []domain.Task
	for _, t := range w.tasks {
		if t.Archived {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ArchivedAt != out[j].ArchivedAt {
			return out[j].ArchivedAt.Before(out[i].ArchivedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Sessions lists sessions by start time.
func (w *Workspace) Sessions() []domain.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]domain.Session, 0, len(w.sessions))
	for _, s := range w.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt != out[j].StartedAt {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (w *Workspace) Settings() domain.Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.settings
}

// Update runs fn under the write lock. When fn fails every write it staged is undone and the
// workspace is left exactly as it was.
func (w *Workspace) Update(fn func(tx *Tx) error) (Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tx := &Tx{w: w, touched: map[domain.Ref]struct{}{}}
	if err := fn(tx); err != nil {
		tx.rollback()
		return Change{}, err
	}
	return tx.change(), nil
}

// ApplyPlan applies a placement plan in one step and returns the resulting change.
func (w *Workspace) ApplyPlan(plan placement.Plan) (Change, error) {
	return w.Update(func(tx *Tx) error {
		return tx.ApplyPlan(plan)
	})
}
