package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// Gateway is the durable storage contract shared by every backend. Records are upserted
// by id; every write is idempotent.
type Gateway interface {
	Boards(ctx context.Context) ([]domain.Board, error)
	// Tasks returns the non-archived tasks.
	Tasks(ctx context.Context) ([]domain.Task, error)
	// ArchivedTasks returns only archived tasks.
	ArchivedTasks(ctx context.Context) ([]domain.Task, error)
	Sessions(ctx context.Context) ([]domain.Session, error)
	// Settings returns the stored singleton, or defaults when none was written yet.
	Settings(ctx context.Context) (*domain.Settings, error)

	Put(ctx context.Context, record domain.Record) error
	// PutMany writes all records in one backend transaction or batched write.
	PutMany(ctx context.Context, records []domain.Record) error
	// Delete removes a record. Deleting a missing id is not an error.
	Delete(ctx context.Context, ref domain.Ref) error

	Ping(ctx context.Context) error
	Close() error
}

// Described is implemented by gateways that can report which backend serves them.
type Described interface {
	Backend() string
	Degraded() bool
}
