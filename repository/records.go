package repository

import (
	"fmt"

	"github.com/fastygo/taskboard/domain"
)

// Grouped splits a heterogeneous record slice by kind, keeping the last write per id.
type Grouped struct {
	Boards   []domain.Board
	Tasks    []domain.Task
	Sessions []domain.Session
	Settings *domain.Settings
}

// Group sorts records into per-kind slices. Later records win over earlier ones with the same id.
func Group(records []domain.Record) (Grouped, error) {
	var g Grouped
	boardIdx := map[string]int{}
	taskIdx := map[string]int{}
	sessionIdx := map[string]int{}

	for _, rec := range records {
		switch r := rec.(type) {
		case domain.Board:
			upsertIndexed(&g.Boards, boardIdx, r.ID, r)
		case *domain.Board:
			upsertIndexed(&g.Boards, boardIdx, r.ID, *r)
		case domain.Task:
			upsertIndexed(&g.Tasks, taskIdx, r.ID, r)
		case *domain.Task:
			upsertIndexed(&g.Tasks, taskIdx, r.ID, *r)
		case domain.Session:
			upsertIndexed(&g.Sessions, sessionIdx, r.ID, r)
		case *domain.Session:
			upsertIndexed(&g.Sessions, sessionIdx, r.ID, *r)
		case domain.Settings:
			s := r
			g.Settings = &s
		case *domain.Settings:
			s := *r
			g.Settings = &s
		default:
			return Grouped{}, domain.WrapError(domain.ErrCodeInvalid, "unsupported record", fmt.Errorf("%T", rec))
		}
	}
	return g, nil
}

func upsertIndexed[T any](list *[]T, index map[string]int, id string, value T) {
	if i, ok := index[id]; ok {
		(*list)[i] = value
		return
	}
	index[id] = len(*list)
	*list = append(*list, value)
}

// ValidateRecord ensures a record carries an id before it reaches a backend.
func ValidateRecord(record domain.Record) error {
	if record == nil || record.RecordID() == "" {
		return domain.ErrInvalidPayload
	}
	return nil
}
