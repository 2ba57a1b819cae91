package local

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// blobDocument is the single JSON document holding every collection.
type blobDocument struct {
	Boards   map[string]domain.Board   `json:"boards"`
	Tasks    map[string]domain.Task    `json:"tasks"`
	Sessions map[string]domain.Session `json:"sessions"`
	Settings *domain.Settings          `json:"settings,omitempty"`
}

type blobGateway struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewBlobGateway builds the synchronous fallback backend: every call reads the whole
// document, applies the change and writes it back.
func NewBlobGateway(fsys afero.Fs, path string) repository.Gateway {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &blobGateway{fs: fsys, path: path}
}

func (g *blobGateway) Boards(ctx context.Context) ([]domain.Board, error) {
	doc, err := g.snapshot()
	if err != nil {
		return nil, err
	}
	boards := make([]domain.Board, 0, len(doc.Boards))
	for _, b := range doc.Boards {
		boards = append(boards, b)
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].ID < boards[j].ID })
	return boards, nil
}

func (g *blobGateway) Tasks(ctx context.Context) ([]domain.Task, error) {
	return g.tasks(false)
}

func (g *blobGateway) ArchivedTasks(ctx context.Context) ([]domain.Task, error) {
	return g.tasks(true)
}

func (g *blobGateway) tasks(archived bool) ([]domain.Task, error) {
	doc, err := g.snapshot()
	if err != nil {
		return nil, err
	}
	var tasks []domain.Task
	for _, t := range doc.Tasks {
		if t.Archived == archived {
			t.ApplyDefaults()
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (g *blobGateway) Sessions(ctx context.Context) ([]domain.Session, error) {
	doc, err := g.snapshot()
	if err != nil {
		return nil, err
	}
	sessions := make([]domain.Session, 0, len(doc.Sessions))
	for _, s := range doc.Sessions {
		s.ApplyDefaults()
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartedAt.Before(sessions[j].StartedAt) })
	return sessions, nil
}

func (g *blobGateway) Settings(ctx context.Context) (*domain.Settings, error) {
	doc, err := g.snapshot()
	if err != nil {
		return nil, err
	}
	if doc.Settings == nil {
		return domain.DefaultSettings(), nil
	}
	settings := *doc.Settings
	settings.ApplyDefaults()
	return &settings, nil
}

func (g *blobGateway) Put(ctx context.Context, record domain.Record) error {
	return g.PutMany(ctx, []domain.Record{record})
}

func (g *blobGateway) PutMany(ctx context.Context, records []domain.Record) error {
	for _, rec := range records {
		if err := repository.ValidateRecord(rec); err != nil {
			return err
		}
	}
	grouped, err := repository.Group(records)
	if err != nil {
		return err
	}
	return g.mutate(func(doc *blobDocument) {
		for _, b := range grouped.Boards {
			doc.Boards[b.ID] = b
		}
		for _, t := range grouped.Tasks {
			doc.Tasks[t.ID] = t.Clone()
		}
		for _, s := range grouped.Sessions {
			doc.Sessions[s.ID] = s
		}
		if grouped.Settings != nil {
			doc.Settings = grouped.Settings
		}
	})
}

func (g *blobGateway) Delete(ctx context.Context, ref domain.Ref) error {
	return g.mutate(func(doc *blobDocument) {
		switch ref.Kind {
		case domain.KindBoard:
			delete(doc.Boards, ref.ID)
		case domain.KindTask:
			delete(doc.Tasks, ref.ID)
		case domain.KindSession:
			delete(doc.Sessions, ref.ID)
		case domain.KindSettings:
			doc.Settings = nil
		}
	})
}

func (g *blobGateway) Ping(ctx context.Context) error {
	_, err := g.snapshot()
	return err
}

func (g *blobGateway) Close() error { return nil }

func (g *blobGateway) Backend() string { return "blob" }

func (g *blobGateway) Degraded() bool { return true }

func (g *blobGateway) snapshot() (*blobDocument, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.read()
}

func (g *blobGateway) mutate(fn func(doc *blobDocument)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	doc, err := g.read()
	if err != nil {
		return err
	}
	fn(doc)
	return g.write(doc)
}

func (g *blobGateway) read() (*blobDocument, error) {
	doc := &blobDocument{
		Boards:   map[string]domain.Board{},
		Tasks:    map[string]domain.Task{},
		Sessions: map[string]domain.Session{},
	}
	data, err := afero.ReadFile(g.fs, g.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	if doc.Boards == nil {
		doc.Boards = map[string]domain.Board{}
	}
	if doc.Tasks == nil {
		doc.Tasks = map[string]domain.Task{}
	}
	if doc.Sessions == nil {
		doc.Sessions = map[string]domain.Session{}
	}
	return doc, nil
}

// write replaces the document through a temp file so a crash never leaves a torn blob.
func (g *blobGateway) write(doc *blobDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(g.path); dir != "" && dir != "." {
		if err := g.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := g.path + ".tmp"
	if err := afero.WriteFile(g.fs, tmp, payload, 0o600); err != nil {
		return err
	}
	return g.fs.Rename(tmp, g.path)
}
