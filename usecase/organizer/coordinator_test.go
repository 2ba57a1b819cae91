package organizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase/placement"
	"github.com/fastygo/taskboard/usecase/workspace"
)

var fixedNow = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

// fakeGateway keeps records in maps and counts every write it receives.
type fakeGateway struct {
	mu       sync.Mutex
	boards   map[string]domain.Board
	tasks    map[string]domain.Task
	sessions map[string]domain.Session
	settings *domain.Settings

	puts    [][]domain.Record
	deletes []domain.Ref
	failPut error
	block   chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		boards:   map[string]domain.Board{},
		tasks:    map[string]domain.Task{},
		sessions: map[string]domain.Session{},
	}
}

func (g *fakeGateway) Boards(context.Context) ([]domain.Board, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.Board
	for _, b := range g.boards {
		out = append(out, b)
	}
	return out, nil
}

func (g *fakeGateway) Tasks(context.Context) ([]domain.Task, error) { return g.tasksWhere(false), nil }

func (g *fakeGateway) ArchivedTasks(context.Context) ([]domain.Task, error) {
	return g.tasksWhere(true), nil
}

func (g *fakeGateway) tasksWhere(archived bool) []domain.Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.Task
	for _, t := range g.tasks {
		if t.Archived == archived {
			out = append(out, t)
		}
	}
	return out
}

func (g *fakeGateway) Sessions(context.Context) ([]domain.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.Session
	for _, s := range g.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (g *fakeGateway) Settings(context.Context) (*domain.Settings, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.settings == nil {
		return domain.DefaultSettings(), nil
	}
	s := *g.settings
	return &s, nil
}

func (g *fakeGateway) Put(ctx context.Context, record domain.Record) error {
	return g.PutMany(ctx, []domain.Record{record})
}

func (g *fakeGateway) PutMany(_ context.Context, records []domain.Record) error {
	if g.block != nil {
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.puts = append(g.puts, records)
	if g.failPut != nil {
		return g.failPut
	}
	for _, rec := range records {
		switch r := rec.(type) {
		case domain.Board:
			g.boards[r.ID] = r
		case domain.Task:
			g.tasks[r.ID] = r
		case domain.Session:
			g.sessions[r.ID] = r
		case domain.Settings:
			g.settings = &r
		}
	}
	return nil
}

func (g *fakeGateway) Delete(_ context.Context, ref domain.Ref) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deletes = append(g.deletes, ref)
	switch ref.Kind {
	case domain.KindBoard:
		delete(g.boards, ref.ID)
	case domain.KindTask:
		delete(g.tasks, ref.ID)
	case domain.KindSession:
		delete(g.sessions, ref.ID)
	}
	return nil
}

func (g *fakeGateway) Ping(context.Context) error { return nil }
func (g *fakeGateway) Close() error               { return nil }
func (g *fakeGateway) Backend() string            { return "fake" }
func (g *fakeGateway) Degraded() bool             { return false }

func (g *fakeGateway) writes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.puts) + len(g.deletes)
}

type countingRecorder struct {
	mu     sync.Mutex
	drags  map[string]int
	writes int
}

func (r *countingRecorder) ObserveDrag(op, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drags == nil {
		r.drags = map[string]int{}
	}
	r.drags[op+"/"+status]++
}

func (r *countingRecorder) ObserveWrite(string, time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
}

func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newCoordinator(t *testing.T, gw *fakeGateway, opts ...Option) *Coordinator {
	t.Helper()
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	}, opts...)
	c := New(workspace.New(), gw, zap.NewNop(), opts...)
	require.NoError(t, c.Load(context.Background()))
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func threeTasks() *fakeGateway {
	gw := newFakeGateway()
	gw.boards["X"] = domain.Board{ID: "X", Title: "X"}
	gw.boards["Y"] = domain.Board{ID: "Y", Title: "Y", Order: 1}
	for i, id := range []string{"T1", "T2", "T3"} {
		gw.tasks[id] = domain.Task{ID: id, Title: id, BoardID: "X", Order: i, Status: domain.StatusWorking, Priority: domain.PriorityMedium, Tags: []string{}}
	}
	return gw
}

func taskOrders(c *Coordinator, board string) map[string]int {
	out := map[string]int{}
	for _, t := range c.Workspace().Tasks(board) {
		out[t.ID] = t.Order
	}
	return out
}

func TestApplyDragPersistsChangedRecords(t *testing.T) {
	gw := threeTasks()
	rec := &countingRecorder{}
	c := newCoordinator(t, gw, WithRecorder(rec))

	out := c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "T3", Source: "X", Destination: "X", Index: 0})
	assert.Equal(t, StatusApplied, out.Status)
	assert.Equal(t, placement.OpSameContainerReorder, out.Operation)
	assert.Len(t, out.Changed, 3)
	assert.Equal(t, map[string]int{"T3": 0, "T1": 1, "T2": 2}, taskOrders(c, "X"))

	final := out.Wait(context.Background())
	require.NoError(t, final.Err)
	assert.Equal(t, StatusApplied, final.Status)
	assert.False(t, final.Pending())

	require.Len(t, gw.puts, 1)
	assert.Len(t, gw.puts[0], 3)
	assert.Equal(t, 0, gw.tasks["T3"].Order)
	assert.Equal(t, 1, rec.writes)
	assert.Equal(t, 1, rec.drags["same_container_reorder/applied"])
}

func TestApplyDragReturnsBeforePersistenceFinishes(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)
	gw.block = make(chan struct{})

	out := c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "T1", Destination: "Y"})
	assert.Equal(t, StatusApplied, out.Status)
	assert.True(t, out.Pending())
	moved, _ := c.Workspace().Task("T1")
	assert.Equal(t, "Y", moved.BoardID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	early := out.Wait(ctx)
	assert.ErrorIs(t, early.Err, context.Canceled)

	close(gw.block)
	final := out.Wait(context.Background())
	require.NoError(t, final.Err)
	assert.Equal(t, StatusApplied, final.Status)
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	gw := threeTasks()
	rec := &countingRecorder{}
	core, logs := observer.New(zap.WarnLevel)
	c := New(workspace.New(), gw, zap.New(core), WithRecorder(rec))
	require.NoError(t, c.Load(context.Background()))
	gw.failPut = errors.New("table unavailable")

	var out Outcome
	require.NotPanics(t, func() {
		out = c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "T3", Destination: "X", Index: 0})
	})
	final := out.Wait(context.Background())

	assert.Equal(t, StatusPersistenceFailed, final.Status)
	assert.True(t, domain.IsDomainError(final.Err, domain.ErrCodePersistence))
	assert.Equal(t, map[string]int{"T3": 0, "T1": 1, "T2": 2}, taskOrders(c, "X"))
	assert.Len(t, gw.puts, 1, "failed writes are not retried")
	assert.Equal(t, 1, logs.FilterMessage("persistence failed").Len())
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, rec.drags["same_container_reorder/persistence_failed"])
}

func TestPersistencePanicIsContained(t *testing.T) {
	c := newCoordinator(t, threeTasks())
	c.gateway = panicGateway{c.gateway}

	var out Outcome
	require.NotPanics(t, func() {
		out = c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "T3", Destination: "X", Index: 0})
	})
	final := out.Wait(context.Background())
	assert.Equal(t, StatusPersistenceFailed, final.Status)
	assert.Equal(t, 0, taskOrders(c, "X")["T3"])
}

type panicGateway struct {
	repository.Gateway
}

func (panicGateway) PutMany(context.Context, []domain.Record) error { panic("driver bug") }

func TestUnknownDestinationWritesNothing(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)

	for _, dest := range []string{"no-such-board", "status:done", "column:1"} {
		out := c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "T1", Destination: dest})
		assert.Equal(t, StatusDestinationNotFound, out.Status, dest)
		assert.False(t, out.Pending())
	}
	assert.Equal(t, map[string]int{"T1": 0, "T2": 1, "T3": 2}, taskOrders(c, "X"))
	require.NoError(t, c.Close(context.Background()))
	assert.Zero(t, gw.writes())
}

func TestNoopDragWritesNothing(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)

	out := c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "T2", Destination: "X", Index: 1})
	assert.Equal(t, StatusNoOp, out.Status)

	out = c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "T2", Destination: "  "})
	assert.Equal(t, StatusNoOp, out.Status)

	out = c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "T2", Destination: "status:working"})
	assert.Equal(t, StatusNoOp, out.Status)

	assert.Equal(t, StatusNoOp, c.ApplyDrag(context.Background(), nil).Status)
	require.NoError(t, c.Close(context.Background()))
	assert.Zero(t, gw.writes())
}

func TestMissingRecordDrag(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)
	out := c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "ghost", Destination: "X"})
	assert.Equal(t, StatusRecordNotFound, out.Status)
	assert.ErrorIs(t, out.Err, domain.ErrRecordNotFound)
	assert.Zero(t, gw.writes())
}

func TestStatusAndDateDrags(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)

	out := c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "T2", Destination: "status:completed"}).Wait(context.Background())
	require.Equal(t, StatusApplied, out.Status)
	t2, _ := c.Workspace().Task("T2")
	assert.Equal(t, domain.StatusCompleted, t2.Status)
	assert.Equal(t, domain.NewTimestamp(fixedNow), t2.CompletedAt)
	assert.Equal(t, 1, t2.Order)
	assert.Equal(t, "X", t2.BoardID)

	out = c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "T2", Destination: "date:2026-06-15"}).Wait(context.Background())
	require.Equal(t, StatusApplied, out.Status)
	assert.Equal(t, domain.Timestamp("2026-06-15T00:00:00.000Z"), gw.tasks["T2"].DueDate)
}

func TestBoardDrag(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)

	out := c.ApplyRawDrag(context.Background(), RawGesture{Item: "board", ItemID: "Y", Source: "boards", Destination: "boards", Index: 0}).Wait(context.Background())
	require.Equal(t, StatusApplied, out.Status)
	assert.Equal(t, placement.OpBoardReorder, out.Operation)
	assert.Equal(t, 0, gw.boards["Y"].Order)
	assert.Equal(t, 1, gw.boards["X"].Order)
}

func TestCloseWaitsForInflightWrites(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)
	gw.block = make(chan struct{})

	c.ApplyRawDrag(context.Background(), RawGesture{Item: "task", ItemID: "T1", Destination: "Y"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Close(ctx), context.DeadlineExceeded)

	close(gw.block)
	assert.NoError(t, c.Close(context.Background()))
	assert.Equal(t, "Y", gw.tasks["T1"].BoardID)
}
