package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// DB is the subset of *pgxpool.Pool the gateway uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type gateway struct {
	db DB
}

// NewGateway returns a Postgres-backed Gateway over typed tables. The gateway owns the pool.
func NewGateway(db DB) repository.Gateway {
	return &gateway{db: db}
}

const (
	boardColumns   = `id, title, sort_order, parent_id, is_archived, is_favorite, collapsed, created_at`
	taskColumns    = `id, title, description, status, priority, tags, due_date, board_id, sort_order, archived, archived_at, created_at, completed_at`
	sessionColumns = `id, task_id, kind, started_at, ended_at, duration_minutes`

	upsertBoard = `
	INSERT INTO boards (` + boardColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		sort_order = EXCLUDED.sort_order,
		parent_id = EXCLUDED.parent_id,
		is_archived = EXCLUDED.is_archived,
		is_favorite = EXCLUDED.is_favorite,
		collapsed = EXCLUDED.collapsed,
		created_at = EXCLUDED.created_at
	`
	upsertTask = `
	INSERT INTO tasks (` + taskColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		status = EXCLUDED.status,
		priority = EXCLUDED.priority,
		tags = EXCLUDED.tags,
		due_date = EXCLUDED.due_date,
		board_id = EXCLUDED.board_id,
		sort_order = EXCLUDED.sort_order,
		archived = EXCLUDED.archived,
		archived_at = EXCLUDED.archived_at,
		created_at = EXCLUDED.created_at,
		completed_at = EXCLUDED.completed_at
	`
	upsertSession = `
	INSERT INTO sessions (` + sessionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		task_id = EXCLUDED.task_id,
		kind = EXCLUDED.kind,
		started_at = EXCLUDED.started_at,
		ended_at = EXCLUDED.ended_at,
		duration_minutes = EXCLUDED.duration_minutes
	`
	upsertSettings = `
	INSERT INTO settings (id, default_view, week_starts_on, sound_enabled, theme, locale, show_archived, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		default_view = EXCLUDED.default_view,
		week_starts_on = EXCLUDED.week_starts_on,
		sound_enabled = EXCLUDED.sound_enabled,
		theme = EXCLUDED.theme,
		locale = EXCLUDED.locale,
		show_archived = EXCLUDED.show_archived,
		updated_at = EXCLUDED.updated_at
	`
)

type scanner interface {
	Scan(dest ...interface{}) error
}

func (g *gateway) Boards(ctx context.Context) ([]domain.Board, error) {
	rows, err := g.db.Query(ctx, `SELECT `+boardColumns+` FROM boards ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (g *gateway) Tasks(ctx context.Context) ([]domain.Task, error) {
	return g.tasks(ctx, false)
}

func (g *gateway) ArchivedTasks(ctx context.Context) ([]domain.Task, error) {
	return g.tasks(ctx, true)
}

func (g *gateway) tasks(ctx context.Context, archived bool) ([]domain.Task, error) {
	rows, err := g.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE archived = $1 ORDER BY id`, archived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (g *gateway) Sessions(ctx context.Context) ([]domain.Session, error) {
	rows, err := g.db.Query(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY started_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (g *gateway) Settings(ctx context.Context) (*domain.Settings, error) {
	const query = `
	SELECT default_view, week_starts_on, sound_enabled, theme, locale, show_archived, updated_at
	FROM settings
	WHERE id = $1
	`
	var (
		s             domain.Settings
		view          string
		theme, locale *string
		updated       *time.Time
	)
	err := g.db.QueryRow(ctx, query, domain.SettingsID).Scan(
		&view, &s.WeekStartsOn, &s.SoundEnabled, &theme, &locale, &s.ShowArchived, &updated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	s.DefaultView = domain.ViewMode(view)
	s.Theme = fromString(theme)
	s.Locale = fromString(locale)
	s.UpdatedAt = fromTime(updated)
	s.ApplyDefaults()
	return &s, nil
}

func (g *gateway) Put(ctx context.Context, record domain.Record) error {
	return g.PutMany(ctx, []domain.Record{record})
}

// PutMany upserts every record inside one transaction.
func (g *gateway) PutMany(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		if err := repository.ValidateRecord(rec); err != nil {
			return err
		}
		query, args, err := upsertArgs(rec)
		if err != nil {
			return err
		}
		batch.Queue(query, args...)
	}

	tx, err := g.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("upsert %s: %w", records[i].RecordKind().Collection(), err)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (g *gateway) Delete(ctx context.Context, ref domain.Ref) error {
	var query string
	switch ref.Kind {
	case domain.KindBoard:
		query = `DELETE FROM boards WHERE id = $1`
	case domain.KindTask:
		query = `DELETE FROM tasks WHERE id = $1`
	case domain.KindSession:
		query = `DELETE FROM sessions WHERE id = $1`
	case domain.KindSettings:
		query = `DELETE FROM settings WHERE id = $1`
	default:
		return domain.ErrInvalidPayload
	}
	_, err := g.db.Exec(ctx, query, ref.ID)
	return err
}

func (g *gateway) Ping(ctx context.Context) error {
	return g.db.Ping(ctx)
}

func (g *gateway) Close() error {
	g.db.Close()
	return nil
}

func (g *gateway) Backend() string { return "postgres" }

func (g *gateway) Degraded() bool { return false }

func upsertArgs(rec domain.Record) (string, []interface{}, error) {
	switch r := rec.(type) {
	case domain.Board:
		return boardArgs(r)
	case *domain.Board:
		return boardArgs(*r)
	case domain.Task:
		return taskArgs(r)
	case *domain.Task:
		return taskArgs(*r)
	case domain.Session:
		return sessionArgs(r)
	case *domain.Session:
		return sessionArgs(*r)
	case domain.Settings:
		return settingsArgs(r)
	case *domain.Settings:
		return settingsArgs(*r)
	default:
		return "", nil, domain.WrapError(domain.ErrCodeInvalid, "unsupported record", fmt.Errorf("%T", rec))
	}
}

func boardArgs(b domain.Board) (string, []interface{}, error) {
	created, err := nullTime(b.CreatedAt)
	if err != nil {
		return "", nil, err
	}
	return upsertBoard, []interface{}{
		b.ID, b.Title, b.Order, nullString(b.ParentID), b.IsArchived, b.IsFavorite, b.Collapsed, created,
	}, nil
}

func taskArgs(t domain.Task) (string, []interface{}, error) {
	ts, err := times(t.DueDate, t.ArchivedAt, t.CreatedAt, t.CompletedAt)
	if err != nil {
		return "", nil, err
	}
	t.ApplyDefaults()
	return upsertTask, []interface{}{
		t.ID, t.Title, nullString(t.Description), string(t.Status), string(t.Priority),
		tagsOrEmpty(t.Tags), ts[0], t.BoardID, t.Order, t.Archived, ts[1], ts[2], ts[3],
	}, nil
}

func sessionArgs(s domain.Session) (string, []interface{}, error) {
	ts, err := times(s.StartedAt, s.EndedAt)
	if err != nil {
		return "", nil, err
	}
	if ts[0] == nil {
		return "", nil, domain.ErrInvalidTimestamp
	}
	s.ApplyDefaults()
	return upsertSession, []interface{}{
		s.ID, nullString(s.TaskID), string(s.Kind), ts[0], ts[1], s.DurationMinutes,
	}, nil
}

func settingsArgs(s domain.Settings) (string, []interface{}, error) {
	updated, err := nullTime(s.UpdatedAt)
	if err != nil {
		return "", nil, err
	}
	s.ApplyDefaults()
	return upsertSettings, []interface{}{
		domain.SettingsID, string(s.DefaultView), s.WeekStartsOn, s.SoundEnabled,
		nullString(s.Theme), nullString(s.Locale), s.ShowArchived, updated,
	}, nil
}

func scanBoard(row scanner) (domain.Board, error) {
	var (
		b       domain.Board
		parent  *string
		created *time.Time
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Order, &parent, &b.IsArchived, &b.IsFavorite, &b.Collapsed, &created); err != nil {
		return domain.Board{}, err
	}
	b.ParentID = fromString(parent)
	b.CreatedAt = fromTime(created)
	return b, nil
}

func scanTask(row scanner) (domain.Task, error) {
	var (
		t                                     domain.Task
		description                           *string
		status, priority                      string
		due, archivedAt, createdAt, completed *time.Time
	)
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&description,
		&status,
		&priority,
		&t.Tags,
		&due,
		&t.BoardID,
		&t.Order,
		&t.Archived,
		&archivedAt,
		&createdAt,
		&completed,
	); err != nil {
		return domain.Task{}, err
	}
	t.Description = fromString(description)
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	t.DueDate = fromTime(due)
	t.ArchivedAt = fromTime(archivedAt)
	t.CreatedAt = fromTime(createdAt)
	t.CompletedAt = fromTime(completed)
	t.ApplyDefaults()
	return t, nil
}

func scanSession(row scanner) (domain.Session, error) {
	var (
		s              domain.Session
		taskID         *string
		kind           string
		started, ended *time.Time
	)
	if err := row.Scan(&s.ID, &taskID, &kind, &started, &ended, &s.DurationMinutes); err != nil {
		return domain.Session{}, err
	}
	s.TaskID = fromString(taskID)
	s.Kind = domain.SessionKind(kind)
	s.StartedAt = fromTime(started)
	s.EndedAt = fromTime(ended)
	s.ApplyDefaults()
	return s, nil
}
