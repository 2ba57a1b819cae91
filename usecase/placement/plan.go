package placement

import (
	"fmt"

	"github.com/fastygo/taskboard/domain"
)

// Patch lists the field changes for one record. Nil fields stay as they are.
type Patch struct {
	Order   *int
	BoardID *string
	Status  *domain.Status
	// CompletedAt is set to a timestamp, or to the zero Timestamp to clear it.
	CompletedAt *domain.Timestamp
	DueDate     *domain.Timestamp
}

// Fields names the fields the patch touches in a stable order.
func (p Patch) Fields() []string {
	var fields []string
	if p.Order != nil {
		fields = append(fields, "order")
	}
	if p.BoardID != nil {
		fields = append(fields, "boardId")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.CompletedAt != nil {
		fields = append(fields, "completedAt")
	}
	if p.DueDate != nil {
		fields = append(fields, "dueDate")
	}
	return fields
}

// ApplyBoard writes the patch onto b. Only Order applies to boards.
func (p Patch) ApplyBoard(b *domain.Board) {
	if p.Order != nil {
		b.Order = *p.Order
	}
}

// ApplyTask writes the patch onto t.
func (p Patch) ApplyTask(t *domain.Task) {
	if p.Order != nil {
		t.Order = *p.Order
	}
	if p.BoardID != nil {
		t.BoardID = *p.BoardID
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CompletedAt != nil {
		t.CompletedAt = *p.CompletedAt
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
}

// Mutation is a patch addressed to one record.
type Mutation struct {
	Ref   domain.Ref
	Patch Patch
}

// Plan is the full set of mutations a gesture produces. It is data only; applying and
// persisting it is the caller's job.
type Plan struct {
	Operation Operation
	Mutations []Mutation
}

// Empty reports whether the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.Mutations) == 0
}

// Refs lists the records the plan touches.
func (p Plan) Refs() []domain.Ref {
	refs := make([]domain.Ref, 0, len(p.Mutations))
	for _, m := range p.Mutations {
		refs = append(refs, m.Ref)
	}
	return refs
}

// ComputeMutation turns a classified gesture into a plan against snap. A gesture that would
// leave everything as it is yields an empty plan.
func ComputeMutation(snap *domain.Snapshot, op Operation, g Gesture, now domain.Timestamp) (Plan, error) {
	plan := Plan{Operation: op}
	switch op {
	case OpBoardReorder:
		board, ok := snap.Board(g.ItemID)
		if !ok {
			return plan, domain.ErrRecordNotFound
		}
		plan.Mutations = reorder(boardEntries(snap.SiblingBoards(board.ParentID)), domain.KindBoard, g.ItemID, g.Index)
	case OpSameContainerReorder:
		task, ok := snap.Task(g.ItemID)
		if !ok {
			return plan, domain.ErrRecordNotFound
		}
		plan.Mutations = reorder(taskEntries(snap.SiblingTasks(task.BoardID)), domain.KindTask, g.ItemID, g.Index)
	case OpCrossContainerMove:
		task, ok := snap.Task(g.ItemID)
		if !ok {
			return plan, domain.ErrRecordNotFound
		}
		dest := g.Destination.BoardID()
		if _, ok := snap.Board(dest); !ok {
			return plan, domain.ErrDestinationNotFound
		}
		plan.Mutations = move(snap, task, dest, g.Index)
	case OpFieldRewriteStatus:
		task, ok := snap.Task(g.ItemID)
		if !ok {
			return plan, domain.ErrRecordNotFound
		}
		if m, changed := rewriteStatus(task, g.Destination.Status(), now); changed {
			plan.Mutations = []Mutation{m}
		}
	case OpFieldRewriteDueDate:
		task, ok := snap.Task(g.ItemID)
		if !ok {
			return plan, domain.ErrRecordNotFound
		}
		m, changed, err := rewriteDueDate(task, g.Destination.Day())
		if err != nil {
			return plan, err
		}
		if changed {
			plan.Mutations = []Mutation{m}
		}
	default:
		return plan, domain.WrapError(domain.ErrCodeInvalid, "unsupported operation", fmt.Errorf("%s", op))
	}
	return plan, nil
}

type entry struct {
	id    string
	order int
}

func boardEntries(boards []domain.Board) []entry {
	out := make([]entry, 0, len(boards))
	for _, b := range boards {
		out = append(out, entry{id: b.ID, order: b.Order})
	}
	return out
}

func taskEntries(tasks []domain.Task) []entry {
	out := make([]entry, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, entry{id: t.ID, order: t.Order})
	}
	return out
}

func clamp(index, n int) int {
	if index < 0 {
		return 0
	}
	if index > n {
		return n
	}
	return index
}

// reorder moves id to index within siblings and renumbers the list. Dropping an item back
// on its own position is a no-op even when the stored orders have gaps.
func reorder(siblings []entry, kind domain.Kind, id string, index int) []Mutation {
	current := -1
	rest := make([]entry, 0, len(siblings))
	for i, e := range siblings {
		if e.id == id {
			current = i
			continue
		}
		rest = append(rest, e)
	}
	if current < 0 {
		return nil
	}
	index = clamp(index, len(rest))
	if index == current {
		return nil
	}
	list := insert(rest, siblings[current], index)
	return renumber(list, kind, nil)
}

func insert(list []entry, e entry, index int) []entry {
	out := make([]entry, 0, len(list)+1)
	out = append(out, list[:index]...)
	out = append(out, e)
	return append(out, list[index:]...)
}

// renumber assigns 0..n-1 in list order and emits a mutation for each changed order. The
// extra patch, when set, is merged into the mutation of its id and always emitted.
func renumber(list []entry, kind domain.Kind, extra map[string]Patch) []Mutation {
	var out []Mutation
	for i, e := range list {
		patch, forced := extra[e.id]
		if e.order == i && !forced {
			continue
		}
		order := i
		patch.Order = &order
		out = append(out, Mutation{Ref: domain.Ref{Kind: kind, ID: e.id}, Patch: patch})
	}
	return out
}

func move(snap *domain.Snapshot, task domain.Task, dest string, index int) []Mutation {
	var source []entry
	for _, e := range taskEntries(snap.SiblingTasks(task.BoardID)) {
		if e.id != task.ID {
			source = append(source, e)
		}
	}
	target := taskEntries(snap.SiblingTasks(dest))
	target = insert(target, entry{id: task.ID, order: task.Order}, clamp(index, len(target)))

	board := dest
	out := renumber(source, domain.KindTask, nil)
	return append(out, renumber(target, domain.KindTask, map[string]Patch{task.ID: {BoardID: &board}})...)
}

func rewriteStatus(task domain.Task, status domain.Status, now domain.Timestamp) (Mutation, bool) {
	if task.Status == status {
		return Mutation{}, false
	}
	next := task.Clone()
	next.SetStatus(status, now)
	patch := Patch{Status: &status}
	if next.CompletedAt != task.CompletedAt {
		completed := next.CompletedAt
		patch.CompletedAt = &completed
	}
	return Mutation{Ref: domain.RefOf(task), Patch: patch}, true
}

func rewriteDueDate(task domain.Task, day domain.Timestamp) (Mutation, bool, error) {
	t, err := day.Time()
	if err != nil {
		return Mutation{}, false, err
	}
	target := domain.DayOf(t)
	if !task.DueDate.IsZero() {
		current, err := task.DueDate.Time()
		if err == nil && domain.DayOf(current) == target {
			return Mutation{}, false, nil
		}
	}
	return Mutation{Ref: domain.RefOf(task), Patch: Patch{DueDate: &target}}, true, nil
}
