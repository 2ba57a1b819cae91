package aztables

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// MaxBatch is the number of actions the service accepts in one entity group transaction.
const MaxBatch = 100

// DefaultPartition keys every entity when no partition is configured.
const DefaultPartition = "taskboard"

type gateway struct {
	tables    map[domain.Kind]Table
	partition string
}

// NewGateway maps each record kind to its own table. Every kind must be present.
func NewGateway(tables map[domain.Kind]Table, partition string) (repository.Gateway, error) {
	for _, k := range domain.Kinds {
		if tables[k] == nil {
			return nil, fmt.Errorf("aztables: no table for %s", k.Collection())
		}
	}
	if partition == "" {
		partition = DefaultPartition
	}
	return &gateway{tables: tables, partition: partition}, nil
}

func list[E any, T any](ctx context.Context, g *gateway, kind domain.Kind, decode func(E) T) ([]T, error) {
	raw, err := g.tables[kind].List(ctx, g.partition)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, data := range raw {
		var e E
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		out = append(out, decode(e))
	}
	return out, nil
}

func (g *gateway) Boards(ctx context.Context) ([]domain.Board, error) {
	boards, err := list(ctx, g, domain.KindBoard, decodeBoard)
	if err != nil {
		return nil, err
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].ID < boards[j].ID })
	return boards, nil
}

func (g *gateway) Tasks(ctx context.Context) ([]domain.Task, error) {
	return g.tasks(ctx, false)
}

func (g *gateway) ArchivedTasks(ctx context.Context) ([]domain.Task, error) {
	return g.tasks(ctx, true)
}

func (g *gateway) tasks(ctx context.Context, archived bool) ([]domain.Task, error) {
	all, err := list(ctx, g, domain.KindTask, decodeTask)
	if err != nil {
		return nil, err
	}
	tasks := all[:0]
	for _, t := range all {
		if t.Archived == archived {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (g *gateway) Sessions(ctx context.Context) ([]domain.Session, error) {
	sessions, err := list(ctx, g, domain.KindSession, decodeSession)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions, nil
}

func (g *gateway) Settings(ctx context.Context) (*domain.Settings, error) {
	data, err := g.tables[domain.KindSettings].Get(ctx, g.partition, domain.SettingsID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return domain.DefaultSettings(), nil
	}
	var e settingsEntity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return decodeSettings(e), nil
}

func (g *gateway) Put(ctx context.Context, record domain.Record) error {
	return g.PutMany(ctx, []domain.Record{record})
}

// PutMany submits one insert-or-replace transaction per table, split into chunks of MaxBatch.
// Records of different kinds land in different tables and cannot share a transaction.
func (g *gateway) PutMany(ctx context.Context, records []domain.Record) error {
	for _, rec := range records {
		if err := repository.ValidateRecord(rec); err != nil {
			return err
		}
	}
	grouped, err := repository.Group(records)
	if err != nil {
		return err
	}

	batches := map[domain.Kind][]aztables.TransactionAction{}
	add := func(kind domain.Kind, entity any) error {
		payload, err := json.Marshal(entity)
		if err != nil {
			return err
		}
		batches[kind] = append(batches[kind], aztables.TransactionAction{
			ActionType: aztables.TransactionTypeInsertReplace,
			Entity:     payload,
		})
		return nil
	}
	for _, b := range grouped.Boards {
		if err := add(domain.KindBoard, encodeBoard(g.partition, b)); err != nil {
			return err
		}
	}
	for _, t := range grouped.Tasks {
		e, err := encodeTask(g.partition, t)
		if err != nil {
			return err
		}
		if err := add(domain.KindTask, e); err != nil {
			return err
		}
	}
	for _, s := range grouped.Sessions {
		if err := add(domain.KindSession, encodeSession(g.partition, s)); err != nil {
			return err
		}
	}
	if grouped.Settings != nil {
		if err := add(domain.KindSettings, encodeSettings(g.partition, *grouped.Settings)); err != nil {
			return err
		}
	}

	for _, kind := range domain.Kinds {
		actions := batches[kind]
		for start := 0; start < len(actions); start += MaxBatch {
			end := min(start+MaxBatch, len(actions))
			if err := g.tables[kind].Submit(ctx, actions[start:end]); err != nil {
				return fmt.Errorf("submit %s: %w", kind.Collection(), err)
			}
		}
	}
	return nil
}

func (g *gateway) Delete(ctx context.Context, ref domain.Ref) error {
	table, ok := g.tables[ref.Kind]
	if !ok {
		return domain.ErrInvalidPayload
	}
	return table.Delete(ctx, g.partition, ref.ID)
}

func (g *gateway) Ping(ctx context.Context) error {
	return g.tables[domain.KindBoard].Ping(ctx)
}

func (g *gateway) Close() error { return nil }

func (g *gateway) Backend() string { return "aztables" }

func (g *gateway) Degraded() bool { return false }
