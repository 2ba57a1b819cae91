package postgres

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

// fakeRow feeds fixed column values to the scan helpers. A nil value leaves the target zero,
// the way pgx scans NULL into a pointer.
type fakeRow []interface{}

func (r fakeRow) Scan(dest ...interface{}) error {
	for i, d := range dest {
		if r[i] == nil {
			continue
		}
		target := reflect.ValueOf(d).Elem()
		value := reflect.ValueOf(r[i])
		if target.Kind() == reflect.Ptr && value.Kind() != reflect.Ptr {
			ptr := reflect.New(value.Type())
			ptr.Elem().Set(value)
			value = ptr
		}
		target.Set(value)
	}
	return nil
}

func TestTaskArgsMapAbsentValuesToNull(t *testing.T) {
	query, args, err := taskArgs(domain.Task{ID: "t1", Title: "x", BoardID: "b1", Order: 2, DueDate: "2026-03-09T00:00:00.000Z"})
	require.NoError(t, err)
	assert.Equal(t, upsertTask, query)
	require.Len(t, args, 13)

	assert.Nil(t, args[2], "description")
	assert.Equal(t, "working", args[3])
	assert.Equal(t, "medium", args[4])
	assert.Equal(t, []string{}, args[5])
	due, ok := args[6].(time.Time)
	require.True(t, ok)
	assert.True(t, due.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, args[10])
	assert.Nil(t, args[12])
}

func TestUpsertArgsRejectsBadInput(t *testing.T) {
	_, _, err := taskArgs(domain.Task{ID: "t1", DueDate: "tomorrow"})
	assert.Error(t, err)

	_, _, err = sessionArgs(domain.Session{ID: "s1"})
	assert.ErrorIs(t, err, domain.ErrInvalidTimestamp)

	query, _, err := upsertArgs(&domain.Board{ID: "b1", Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, upsertBoard, query)

	query, args, err := upsertArgs(domain.Settings{})
	require.NoError(t, err)
	assert.Equal(t, upsertSettings, query)
	assert.Equal(t, domain.SettingsID, args[0])
	assert.Equal(t, "list", args[1])
}

func TestScanTask(t *testing.T) {
	due := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 3, 1, 8, 15, 30, 250_000_000, time.FixedZone("CET", 3600))
	row := fakeRow{"t1", "Plan", nil, "completed", "high", []string{"a"}, due, "b1", 3, false, nil, created, nil}

	task, err := scanTask(row)
	require.NoError(t, err)
	assert.Equal(t, domain.Task{
		ID: "t1", Title: "Plan", Status: domain.StatusCompleted, Priority: domain.PriorityHigh,
		Tags: []string{"a"}, DueDate: "2026-03-09T00:00:00.000Z", BoardID: "b1", Order: 3,
		CreatedAt: "2026-03-01T07:15:30.250Z",
	}, task)
}

func TestScanBoardAndSession(t *testing.T) {
	b, err := scanBoard(fakeRow{"b1", "Work", 1, "p1", false, true, false, nil})
	require.NoError(t, err)
	assert.Equal(t, domain.Board{ID: "b1", Title: "Work", Order: 1, ParentID: "p1", IsFavorite: true}, b)

	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s, err := scanSession(fakeRow{"s1", nil, "", started, nil, 0})
	require.NoError(t, err)
	assert.Equal(t, domain.SessionFocus, s.Kind)
	assert.Equal(t, domain.Timestamp("2026-03-01T09:00:00.000Z"), s.StartedAt)
	assert.True(t, s.IsRunning())
}

func TestGatewayValidatesBeforeTouchingTheDatabase(t *testing.T) {
	gw := NewGateway(nil)
	ctx := context.Background()
	assert.NoError(t, gw.PutMany(ctx, nil))
	assert.ErrorIs(t, gw.Put(ctx, domain.Board{}), domain.ErrInvalidPayload)
	assert.ErrorIs(t, gw.Delete(ctx, domain.Ref{Kind: "widget", ID: "x"}), domain.ErrInvalidPayload)
}

// TestGatewayAgainstDatabase runs only when TEST_DATABASE_URL points at a scratch database.
func TestGatewayAgainstDatabase(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	schema, err := os.ReadFile("../../assets/migrations/000001_init.up.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE boards, tasks, sessions, settings`)
	require.NoError(t, err)

	gw := NewGateway(pool)
	t.Cleanup(func() { _ = gw.Close() })

	task := domain.Task{ID: "t1", Title: "x", BoardID: "b1", Status: domain.StatusWorking, Priority: domain.PriorityLow, Tags: []string{"a"}, DueDate: "2026-03-09T00:00:00.000Z"}
	require.NoError(t, gw.PutMany(ctx, []domain.Record{
		domain.Board{ID: "b1", Title: "b"},
		task,
		domain.Settings{DefaultView: domain.ViewKanban},
	}))

	tasks, err := gw.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task, tasks[0])

	settings, err := gw.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ViewKanban, settings.DefaultView)

	require.NoError(t, gw.Delete(ctx, domain.Ref{Kind: domain.KindTask, ID: "t1"}))
	tasks, err = gw.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
