package organizer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase/placement"
	"github.com/fastygo/taskboard/usecase/workspace"
)

// Recorder observes drag outcomes and gateway writes.
type Recorder interface {
	ObserveDrag(operation, status string)
	ObserveWrite(backend string, d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDrag(string, string)                 {}
func (nopRecorder) ObserveWrite(string, time.Duration, error) {}

// Coordinator is the single writer of the workspace. It applies every change in memory first
// and then hands the changed records to the gateway.
type Coordinator struct {
	ws       *workspace.Workspace
	gateway  repository.Gateway
	logger   *zap.Logger
	recorder Recorder
	clock    func() time.Time
	newID    func() string

	inflight sync.WaitGroup
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithRecorder reports drag and write metrics to r.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator overrides how new record ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(c *Coordinator) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// New wires a coordinator over its own workspace.
func New(ws *workspace.Workspace, gateway repository.Gateway, logger *zap.Logger, opts ...Option) *Coordinator {
	if ws == nil {
		ws = workspace.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		ws:       ws,
		gateway:  gateway,
		logger:   logger,
		recorder: nopRecorder{},
		clock:    time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Workspace exposes the owned state for read paths.
func (c *Coordinator) Workspace() *workspace.Workspace {
	return c.ws
}

func (c *Coordinator) now() domain.Timestamp {
	return domain.NewTimestamp(c.clock())
}

// Load replaces the workspace with the gateway's current content.
func (c *Coordinator) Load(ctx context.Context) error {
	boards, err := c.gateway.Boards(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "load boards", err)
	}
	live, err := c.gateway.Tasks(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "load tasks", err)
	}
	archived, err := c.gateway.ArchivedTasks(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "load archived tasks", err)
	}
	sessions, err := c.gateway.Sessions(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "load sessions", err)
	}
	settings, err := c.gateway.Settings(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "load settings", err)
	}

	c.ws.Load(workspace.State{
		Boards:   boards,
		Tasks:    append(live, archived...),
		Sessions: sessions,
		Settings: settings,
	})
	c.logger.Info("workspace loaded",
		zap.Int("boards", len(boards)),
		zap.Int("tasks", len(live)),
		zap.Int("archived_tasks", len(archived)),
		zap.Int("sessions", len(sessions)))
	return nil
}

// RawGesture is a gesture as it arrives from the UI, with container ids in wire form.
type RawGesture struct {
	Item        string
	ItemID      string
	Source      string
	Destination string
	Index       int
}

// ApplyRawDrag decodes container ids and applies the drag. An empty destination is a drop
// outside any container and does nothing.
func (c *Coordinator) ApplyRawDrag(ctx context.Context, raw RawGesture) Outcome {
	if strings.TrimSpace(raw.Destination) == "" {
		return Outcome{Status: StatusNoOp}
	}
	dest, err := domain.ParseContainerRef(raw.Destination)
	if err != nil {
		c.recorder.ObserveDrag(placement.OpNone.String(), string(StatusDestinationNotFound))
		return Outcome{Status: StatusDestinationNotFound, Err: err}
	}
	g := placement.Gesture{
		Item:        placement.ItemKind(strings.ToLower(strings.TrimSpace(raw.Item))),
		ItemID:      raw.ItemID,
		Destination: dest,
		Index:       raw.Index,
	}
	if src, err := domain.ParseContainerRef(raw.Source); err == nil {
		g.Source = src
	}
	return c.ApplyDrag(ctx, &g)
}

// ApplyDrag classifies the gesture, applies its plan to the workspace in one step and starts
// persisting the changed records in the background. It never panics and never returns before
// the new arrangement is readable.
func (c *Coordinator) ApplyDrag(ctx context.Context, g *placement.Gesture) Outcome {
	if g == nil || g.Destination.IsZero() {
		return Outcome{Status: StatusNoOp}
	}

	var plan placement.Plan
	change, err := c.ws.Update(func(tx *workspace.Tx) error {
		snap := tx.Snapshot()
		op, err := placement.Classify(snap, *g)
		if err != nil {
			return err
		}
		plan, err = placement.ComputeMutation(snap, op, *g, c.now())
		if err != nil {
			return err
		}
		return tx.ApplyPlan(plan)
	})
	if err != nil {
		out := Outcome{Status: rejectionStatus(err), Operation: plan.Operation, Err: err}
		c.logger.Info("drag rejected",
			zap.String("item", string(g.Item)),
			zap.String("item_id", g.ItemID),
			zap.String("destination", g.Destination.String()),
			zap.Error(err))
		c.recorder.ObserveDrag(plan.Operation.String(), string(out.Status))
		return out
	}
	if change.Empty() {
		c.recorder.ObserveDrag(plan.Operation.String(), string(StatusNoOp))
		return Outcome{Status: StatusNoOp, Operation: plan.Operation}
	}

	out := Outcome{
		Status:    StatusApplied,
		Operation: plan.Operation,
		Changed:   change.Refs(),
		write:     &pendingWrite{done: make(chan struct{})},
	}
	c.detach(ctx, out, change)
	return out
}

func rejectionStatus(err error) Status {
	if domain.IsDomainError(err, domain.ErrCodeDestinationNotFound) {
		return StatusDestinationNotFound
	}
	return StatusRecordNotFound
}

// detach persists change on its own goroutine with a context that survives the request.
func (c *Coordinator) detach(ctx context.Context, out Outcome, change workspace.Change) {
	w := out.write
	op := out.Operation.String()
	bg := context.WithoutCancel(ctx)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(w.done)
		defer func() {
			if r := recover(); r != nil {
				w.err = domain.WrapError(domain.ErrCodePersistence, "persist changes", fmt.Errorf("panic: %v", r))
				c.logger.Warn("persistence panicked", zap.String("operation", op), zap.Any("panic", r))
				c.recorder.ObserveDrag(op, string(StatusPersistenceFailed))
			}
		}()

		w.err = c.persist(bg, change)
		if w.err != nil {
			c.recorder.ObserveDrag(op, string(StatusPersistenceFailed))
			return
		}
		c.recorder.ObserveDrag(op, string(StatusApplied))
	}()
}

// persist writes a change through the gateway. Failures are logged and returned, never
// retried, and never undo the in-memory change.
func (c *Coordinator) persist(ctx context.Context, change workspace.Change) error {
	if change.Empty() {
		return nil
	}
	start := time.Now()
	err := c.write(ctx, change)
	c.recorder.ObserveWrite(backendName(c.gateway), time.Since(start), err)
	if err != nil {
		c.logger.Warn("persistence failed",
			zap.Int("records", len(change.Put)),
			zap.Int("deletes", len(change.Deleted)),
			zap.Error(err))
		return domain.WrapError(domain.ErrCodePersistence, "persist changes", err)
	}
	return nil
}

func (c *Coordinator) write(ctx context.Context, change workspace.Change) error {
	if len(change.Put) > 0 {
		if err := c.gateway.PutMany(ctx, change.Put); err != nil {
			return err
		}
	}
	for _, ref := range change.Deleted {
		if err := c.gateway.Delete(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}

// commit runs a direct record operation: apply in memory, then persist synchronously.
func (c *Coordinator) commit(ctx context.Context, fn func(tx *workspace.Tx) error) (workspace.Change, error) {
	change, err := c.ws.Update(fn)
	if err != nil {
		return change, err
	}
	return change, c.persist(ctx, change)
}

// Close waits for detached writes to finish or ctx to end.
func (c *Coordinator) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func backendName(g repository.Gateway) string {
	if d, ok := g.(repository.Described); ok {
		return d.Backend()
	}
	return "unknown"
}
