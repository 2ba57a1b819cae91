package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const defaultPrefix = "taskboard"

type gateway struct {
	client goRedis.UniversalClient
	prefix string
}

// NewGateway stores every collection as a hash `<prefix>:<collection>` keyed by record id.
// The gateway owns the client and closes it on Close.
func NewGateway(client goRedis.UniversalClient, prefix string) repository.Gateway {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &gateway{client: client, prefix: prefix}
}

func (g *gateway) key(kind domain.Kind) string {
	return fmt.Sprintf("%s:%s", g.prefix, kind.Collection())
}

func (g *gateway) values(ctx context.Context, kind domain.Kind) ([]string, error) {
	all, err := g.client.HGetAll(ctx, g.key(kind)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, all[id])
	}
	return out, nil
}

func (g *gateway) Boards(ctx context.Context) ([]domain.Board, error) {
	raw, err := g.values(ctx, domain.KindBoard)
	if err != nil {
		return nil, err
	}
	boards := make([]domain.Board, 0, len(raw))
	for _, v := range raw {
		var doc boardDoc
		if err := json.Unmarshal([]byte(v), &doc); err != nil {
			return nil, fmt.Errorf("decode board: %w", err)
		}
		boards = append(boards, decodeBoard(doc))
	}
	return boards, nil
}

func (g *gateway) Tasks(ctx context.Context) ([]domain.Task, error) {
	return g.tasks(ctx, false)
}

func (g *gateway) ArchivedTasks(ctx context.Context) ([]domain.Task, error) {
	return g.tasks(ctx, true)
}

func (g *gateway) tasks(ctx context.Context, archived bool) ([]domain.Task, error) {
	raw, err := g.values(ctx, domain.KindTask)
	if err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(raw))
	for _, v := range raw {
		var doc taskDoc
		if err := json.Unmarshal([]byte(v), &doc); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		if doc.Archived == archived {
			tasks = append(tasks, decodeTask(doc))
		}
	}
	return tasks, nil
}

func (g *gateway) Sessions(ctx context.Context) ([]domain.Session, error) {
	raw, err := g.values(ctx, domain.KindSession)
	if err != nil {
		return nil, err
	}
	sessions := make([]domain.Session, 0, len(raw))
	for _, v := range raw {
		var doc sessionDoc
		if err := json.Unmarshal([]byte(v), &doc); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		sessions = append(sessions, decodeSession(doc))
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions, nil
}

func (g *gateway) Settings(ctx context.Context) (*domain.Settings, error) {
	v, err := g.client.HGet(ctx, g.key(domain.KindSettings), domain.SettingsID).Result()
	if errors.Is(err, goRedis.Nil) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	var doc settingsDoc
	if err := json.Unmarshal([]byte(v), &doc); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return decodeSettings(doc), nil
}

func (g *gateway) Put(ctx context.Context, record domain.Record) error {
	return g.PutMany(ctx, []domain.Record{record})
}

// PutMany writes every record inside one MULTI/EXEC block.
func (g *gateway) PutMany(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	type field struct {
		key, id string
		value   []byte
	}
	fields := make([]field, 0, len(records))
	for _, rec := range records {
		if err := repository.ValidateRecord(rec); err != nil {
			return err
		}
		payload, err := encode(rec)
		if err != nil {
			return err
		}
		fields = append(fields, field{key: g.key(rec.RecordKind()), id: rec.RecordID(), value: payload})
	}

	_, err := g.client.TxPipelined(ctx, func(pipe goRedis.Pipeliner) error {
		for _, f := range fields {
			pipe.HSet(ctx, f.key, f.id, f.value)
		}
		return nil
	})
	return err
}

func (g *gateway) Delete(ctx context.Context, ref domain.Ref) error {
	return g.client.HDel(ctx, g.key(ref.Kind), ref.ID).Err()
}

func (g *gateway) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

func (g *gateway) Close() error {
	return g.client.Close()
}

func (g *gateway) Backend() string { return "redis" }

func (g *gateway) Degraded() bool { return false }

func encode(rec domain.Record) ([]byte, error) {
	var (
		doc any
		err error
	)
	switch r := rec.(type) {
	case domain.Board:
		doc, err = encodeBoard(r)
	case *domain.Board:
		doc, err = encodeBoard(*r)
	case domain.Task:
		doc, err = encodeTask(r)
	case *domain.Task:
		doc, err = encodeTask(*r)
	case domain.Session:
		doc, err = encodeSession(r)
	case *domain.Session:
		doc, err = encodeSession(*r)
	case domain.Settings:
		doc, err = encodeSettings(r)
	case *domain.Settings:
		doc, err = encodeSettings(*r)
	default:
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unsupported record", fmt.Errorf("%T", rec))
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
