package organizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

func strPtr(s string) *string { return &s }

func TestCreateBoardAppendsInScope(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)
	ctx := context.Background()

	top, err := c.CreateBoard(ctx, BoardInput{Title: "  Inbox "})
	require.NoError(t, err)
	assert.Equal(t, "Inbox", top.Title)
	assert.Equal(t, 2, top.Order)
	assert.Equal(t, domain.NewTimestamp(fixedNow), top.CreatedAt)
	assert.Equal(t, top, gw.boards[top.ID])

	sub, err := c.CreateBoard(ctx, BoardInput{Title: "Sub", ParentID: "X"})
	require.NoError(t, err)
	assert.Equal(t, 0, sub.Order)

	_, err = c.CreateBoard(ctx, BoardInput{Title: "Deep", ParentID: sub.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidNesting)

	_, err = c.CreateBoard(ctx, BoardInput{Title: ""})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Len(t, c.Boards(), 4)
}

func TestUpdateBoardReparentCompactsOldScope(t *testing.T) {
	gw := threeTasks()
	gw.boards["Z"] = domain.Board{ID: "Z", Title: "Z", Order: 2}
	c := newCoordinator(t, gw)

	moved, err := c.UpdateBoard(context.Background(), "Y", BoardPatch{ParentID: strPtr("X"), Title: strPtr("Y2")})
	require.NoError(t, err)
	assert.Equal(t, "X", moved.ParentID)
	assert.Equal(t, "Y2", moved.Title)
	assert.Equal(t, 0, moved.Order)
	assert.Equal(t, 1, gw.boards["Z"].Order)

	_, err = c.UpdateBoard(context.Background(), "X", BoardPatch{ParentID: strPtr("Z")})
	assert.ErrorIs(t, err, domain.ErrInvalidNesting)

	_, err = c.UpdateBoard(context.Background(), "nope", BoardPatch{})
	assert.ErrorIs(t, err, domain.ErrBoardNotFound)
}

func TestArchiveAndRestoreBoard(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)
	ctx := context.Background()

	archived, err := c.ArchiveBoard(ctx, "X")
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.Equal(t, 1, gw.boards["Y"].Order, "archival leaves sibling orders alone")

	out := c.ApplyRawDrag(ctx, RawGesture{Item: "task", ItemID: "T1", Destination: "X"})
	assert.Equal(t, StatusDestinationNotFound, out.Status, "an archived board is no drop target")

	restored, err := c.RestoreBoard(ctx, "X")
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)
	assert.Equal(t, 2, restored.Order)
}

func TestRestoreBoardWithoutParentPromotesToTop(t *testing.T) {
	gw := threeTasks()
	gw.boards["S"] = domain.Board{ID: "S", Title: "S", ParentID: "gone", IsArchived: true}
	c := newCoordinator(t, gw)

	b, err := c.RestoreBoard(context.Background(), "S")
	require.NoError(t, err)
	assert.Empty(t, b.ParentID)
	assert.Equal(t, 2, b.Order)
}

func TestDuplicateBoardCopiesLiveTasks(t *testing.T) {
	gw := threeTasks()
	t2 := gw.tasks["T2"]
	t2.Archived = true
	gw.tasks["T2"] = t2
	c := newCoordinator(t, gw)

	dup, err := c.DuplicateBoard(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, "X (copy)", dup.Title)
	assert.Equal(t, 2, dup.Order)

	copies := c.Workspace().Tasks(dup.ID)
	require.Len(t, copies, 2)
	assert.Equal(t, 0, copies[0].Order)
	assert.Equal(t, 1, copies[1].Order)
	assert.Equal(t, "T1", copies[0].Title)
	assert.Equal(t, "T3", copies[1].Title)
}

func TestDeleteBoardCascades(t *testing.T) {
	gw := threeTasks()
	gw.boards["S"] = domain.Board{ID: "S", Title: "S", ParentID: "X"}
	gw.tasks["TS"] = domain.Task{ID: "TS", BoardID: "S", Title: "TS"}
	c := newCoordinator(t, gw)

	require.NoError(t, c.DeleteBoard(context.Background(), "X"))
	assert.Len(t, c.Boards(), 1)
	assert.Empty(t, gw.tasks)
	assert.Len(t, gw.boards, 1)
	assert.Equal(t, 0, gw.boards["Y"].Order)

	assert.ErrorIs(t, c.DeleteBoard(context.Background(), "X"), domain.ErrBoardNotFound)
}

func TestCreateTask(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)
	ctx := context.Background()

	task, err := c.CreateTask(ctx, TaskInput{BoardID: "X", Title: "T4", Tags: []string{"b", "a", "a"}, DueDate: "2026-07-04T18:00:00+02:00", Status: domain.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, 3, task.Order)
	assert.Equal(t, []string{"a", "b"}, task.Tags)
	assert.Equal(t, domain.Timestamp("2026-07-04T00:00:00.000Z"), task.DueDate)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, domain.NewTimestamp(fixedNow), task.CompletedAt)

	_, err = c.CreateTask(ctx, TaskInput{BoardID: "missing", Title: "x"})
	assert.ErrorIs(t, err, domain.ErrBoardNotFound)

	_, err = c.CreateTask(ctx, TaskInput{BoardID: "X", Title: "x", DueDate: "soon"})
	assert.ErrorIs(t, err, domain.ErrInvalidTimestamp)

	_, err = c.CreateTask(ctx, TaskInput{BoardID: "X", Title: "x", Priority: "urgent"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestUpdateTaskKeepsPosition(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)
	status := domain.StatusCompleted
	tags := []string{"x"}

	updated, err := c.UpdateTask(context.Background(), "T2", TaskPatch{Title: strPtr("renamed"), Status: &status, Tags: &tags, DueDate: strPtr("2026-01-02")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, 1, updated.Order)
	assert.Equal(t, "X", updated.BoardID)
	assert.False(t, updated.CompletedAt.IsZero())

	cleared, err := c.UpdateTask(context.Background(), "T2", TaskPatch{DueDate: strPtr("")})
	require.NoError(t, err)
	assert.True(t, cleared.DueDate.IsZero())
}

func TestArchiveRestoreDeleteTask(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)
	ctx := context.Background()

	archived, err := c.ArchiveTask(ctx, "T1")
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	assert.Equal(t, domain.NewTimestamp(fixedNow), archived.ArchivedAt)
	assert.Equal(t, 1, gw.tasks["T2"].Order)
	assert.Len(t, c.ArchivedTasks(), 1)

	restored, err := c.RestoreTask(ctx, "T1")
	require.NoError(t, err)
	assert.False(t, restored.Archived)
	assert.Equal(t, 3, restored.Order)

	require.NoError(t, c.DeleteTask(ctx, "T2"))
	_, ok := gw.tasks["T2"]
	assert.False(t, ok)
	assert.Equal(t, map[string]int{"T3": 0, "T1": 1}, taskOrders(c, "X"))

	dup, err := c.DuplicateTask(ctx, "T3")
	require.NoError(t, err)
	assert.Equal(t, "T3 (copy)", dup.Title)
	assert.Equal(t, 2, dup.Order)
}

func TestDirectWriteFailureIsReported(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)
	gw.failPut = errors.New("offline")

	task, err := c.CreateTask(context.Background(), TaskInput{BoardID: "X", Title: "kept"})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodePersistence))
	_, ferr := c.Task(task.ID)
	assert.NoError(t, ferr, "the in-memory change survives a failed write")
}

func TestSessions(t *testing.T) {
	gw := threeTasks()
	clock := fixedNow
	c := newCoordinator(t, gw, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	first, err := c.StartSession(ctx, SessionInput{TaskID: "T1"})
	require.NoError(t, err)
	assert.Equal(t, domain.SessionFocus, first.Kind)
	assert.True(t, first.IsRunning())

	clock = fixedNow.Add(25*time.Minute + 40*time.Second)
	second, err := c.StartSession(ctx, SessionInput{Kind: domain.SessionBreak})
	require.NoError(t, err)
	assert.Equal(t, 25, gw.sessions[first.ID].DurationMinutes, "starting a session stops the running one")

	clock = clock.Add(5 * time.Minute)
	stopped, err := c.StopSession(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stopped.DurationMinutes)

	again, err := c.StopSession(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, stopped, again)

	_, err = c.StartSession(ctx, SessionInput{TaskID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = c.StopSession(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, c.DeleteSession(ctx, first.ID))
	require.NoError(t, c.DeleteSession(ctx, first.ID))
	assert.Len(t, c.Sessions(), 1)
}

func TestUpdateSettings(t *testing.T) {
	gw := threeTasks()
	c := newCoordinator(t, gw)
	view := domain.ViewKanban
	week := 9

	s, err := c.UpdateSettings(context.Background(), SettingsPatch{DefaultView: &view})
	require.NoError(t, err)
	assert.Equal(t, domain.ViewKanban, s.DefaultView)
	assert.Equal(t, domain.NewTimestamp(fixedNow), s.UpdatedAt)
	require.NotNil(t, gw.settings)
	assert.Equal(t, domain.ViewKanban, gw.settings.DefaultView)

	_, err = c.UpdateSettings(context.Background(), SettingsPatch{WeekStartsOn: &week})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Equal(t, domain.ViewKanban, c.Settings().DefaultView)
	assert.Equal(t, 1, c.Settings().WeekStartsOn)
}
