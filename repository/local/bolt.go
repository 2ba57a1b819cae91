package local

import (
	"context"
	"encoding/json"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/boltdb"
	"github.com/fastygo/taskboard/repository"
)

type boltGateway struct {
	store *boltdb.Store
}

// NewBoltGateway builds the embedded transactional backend over an open Bolt store.
func NewBoltGateway(store *boltdb.Store) repository.Gateway {
	return &boltGateway{store: store}
}

func (g *boltGateway) Boards(ctx context.Context) ([]domain.Board, error) {
	var boards []domain.Board
	err := g.store.ForEach(domain.KindBoard.Collection(), func(_, value []byte) error {
		var b domain.Board
		if err := json.Unmarshal(value, &b); err != nil {
			return err
		}
		boards = append(boards, b)
		return nil
	})
	return boards, err
}

func (g *boltGateway) Tasks(ctx context.Context) ([]domain.Task, error) {
	return g.tasks(false)
}

func (g *boltGateway) ArchivedTasks(ctx context.Context) ([]domain.Task, error) {
	return g.tasks(true)
}

func (g *boltGateway) tasks(archived bool) ([]domain.Task, error) {
	var tasks []domain.Task
	err := g.store.ForEach(domain.KindTask.Collection(), func(_, value []byte) error {
		var t domain.Task
		if err := json.Unmarshal(value, &t); err != nil {
			return err
		}
		if t.Archived == archived {
			t.ApplyDefaults()
			tasks = append(tasks, t)
		}
		return nil
	})
	return tasks, err
}

func (g *boltGateway) Sessions(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	err := g.store.ForEach(domain.KindSession.Collection(), func(_, value []byte) error {
		var s domain.Session
		if err := json.Unmarshal(value, &s); err != nil {
			return err
		}
		s.ApplyDefaults()
		sessions = append(sessions, s)
		return nil
	})
	return sessions, err
}

func (g *boltGateway) Settings(ctx context.Context) (*domain.Settings, error) {
	settings := domain.DefaultSettings()
	if _, err := g.store.Get(domain.KindSettings.Collection(), domain.SettingsID, settings); err != nil {
		return nil, err
	}
	settings.ApplyDefaults()
	return settings, nil
}

func (g *boltGateway) Put(ctx context.Context, record domain.Record) error {
	return g.PutMany(ctx, []domain.Record{record})
}

func (g *boltGateway) PutMany(ctx context.Context, records []domain.Record) error {
	for _, rec := range records {
		if err := repository.ValidateRecord(rec); err != nil {
			return err
		}
	}
	return g.store.Update(func(tx boltdb.Tx) error {
		for _, rec := range records {
			if err := tx.Put(rec.RecordKind().Collection(), rec.RecordID(), rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *boltGateway) Delete(ctx context.Context, ref domain.Ref) error {
	return g.store.Update(func(tx boltdb.Tx) error {
		return tx.Delete(ref.Kind.Collection(), ref.ID)
	})
}

func (g *boltGateway) Ping(ctx context.Context) error {
	_, err := g.store.Size(domain.KindBoard.Collection())
	return err
}

func (g *boltGateway) Close() error {
	return g.store.Close()
}

func (g *boltGateway) Backend() string { return "bolt" }

func (g *boltGateway) Degraded() bool { return false }
