package redis

import (
	"time"

	"github.com/fastygo/taskboard/domain"
)

// Documents are stored as JSON hash values. Timestamps travel as unix milliseconds and
// empty optional fields are omitted.

type boardDoc struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Order      int    `json:"order"`
	ParentID   string `json:"parentId,omitempty"`
	IsArchived bool   `json:"isArchived,omitempty"`
	IsFavorite bool   `json:"isFavorite,omitempty"`
	Collapsed  bool   `json:"collapsed,omitempty"`
	CreatedAt  *int64 `json:"createdAt,omitempty"`
}

type taskDoc struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DueDate     *int64   `json:"dueDate,omitempty"`
	BoardID     string   `json:"boardId"`
	Order       int      `json:"order"`
	Archived    bool     `json:"archived,omitempty"`
	ArchivedAt  *int64   `json:"archivedAt,omitempty"`
	CreatedAt   *int64   `json:"createdAt,omitempty"`
	CompletedAt *int64   `json:"completedAt,omitempty"`
}

type sessionDoc struct {
	ID              string `json:"id"`
	TaskID          string `json:"taskId,omitempty"`
	Kind            string `json:"kind,omitempty"`
	StartedAt       *int64 `json:"startedAt,omitempty"`
	EndedAt         *int64 `json:"endedAt,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
}

type settingsDoc struct {
	DefaultView  string `json:"defaultView,omitempty"`
	WeekStartsOn int    `json:"weekStartsOn"`
	SoundEnabled bool   `json:"soundEnabled"`
	Theme        string `json:"theme,omitempty"`
	Locale       string `json:"locale,omitempty"`
	ShowArchived bool   `json:"showArchived,omitempty"`
	UpdatedAt    *int64 `json:"updatedAt,omitempty"`
}

func toMillis(ts domain.Timestamp) (*int64, error) {
	if ts.IsZero() {
		return nil, nil
	}
	t, err := ts.Time()
	if err != nil {
		return nil, err
	}
	ms := t.UnixMilli()
	return &ms, nil
}

func fromMillis(ms *int64) domain.Timestamp {
	if ms == nil {
		return ""
	}
	return domain.NewTimestamp(time.UnixMilli(*ms))
}

// millis converts several timestamps at once, stopping at the first malformed one.
func millis(dst []**int64, src ...domain.Timestamp) error {
	for i, ts := range src {
		v, err := toMillis(ts)
		if err != nil {
			return err
		}
		*dst[i] = v
	}
	return nil
}

func encodeBoard(b domain.Board) (boardDoc, error) {
	doc := boardDoc{
		ID:         b.ID,
		Title:      b.Title,
		Order:      b.Order,
		ParentID:   b.ParentID,
		IsArchived: b.IsArchived,
		IsFavorite: b.IsFavorite,
		Collapsed:  b.Collapsed,
	}
	err := millis([]**int64{&doc.CreatedAt}, b.CreatedAt)
	return doc, err
}

func decodeBoard(doc boardDoc) domain.Board {
	return domain.Board{
		ID:         doc.ID,
		Title:      doc.Title,
		Order:      doc.Order,
		ParentID:   doc.ParentID,
		IsArchived: doc.IsArchived,
		IsFavorite: doc.IsFavorite,
		Collapsed:  doc.Collapsed,
		CreatedAt:  fromMillis(doc.CreatedAt),
	}
}

func encodeTask(t domain.Task) (taskDoc, error) {
	doc := taskDoc{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		BoardID:     t.BoardID,
		Order:       t.Order,
		Archived:    t.Archived,
	}
	if len(t.Tags) > 0 {
		doc.Tags = append([]string(nil), t.Tags...)
	}
	err := millis(
		[]**int64{&doc.DueDate, &doc.ArchivedAt, &doc.CreatedAt, &doc.CompletedAt},
		t.DueDate, t.ArchivedAt, t.CreatedAt, t.CompletedAt,
	)
	return doc, err
}

func decodeTask(doc taskDoc) domain.Task {
	t := domain.Task{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Status:      domain.Status(doc.Status),
		Priority:    domain.Priority(doc.Priority),
		Tags:        doc.Tags,
		DueDate:     fromMillis(doc.DueDate),
		BoardID:     doc.BoardID,
		Order:       doc.Order,
		Archived:    doc.Archived,
		ArchivedAt:  fromMillis(doc.ArchivedAt),
		CreatedAt:   fromMillis(doc.CreatedAt),
		CompletedAt: fromMillis(doc.CompletedAt),
	}
	t.ApplyDefaults()
	return t
}

func encodeSession(s domain.Session) (sessionDoc, error) {
	doc := sessionDoc{
		ID:              s.ID,
		TaskID:          s.TaskID,
		Kind:            string(s.Kind),
		DurationMinutes: s.DurationMinutes,
	}
	err := millis([]**int64{&doc.StartedAt, &doc.EndedAt}, s.StartedAt, s.EndedAt)
	return doc, err
}

func decodeSession(doc sessionDoc) domain.Session {
	s := domain.Session{
		ID:              doc.ID,
		TaskID:          doc.TaskID,
		Kind:            domain.SessionKind(doc.Kind),
		StartedAt:       fromMillis(doc.StartedAt),
		EndedAt:         fromMillis(doc.EndedAt),
		DurationMinutes: doc.DurationMinutes,
	}
	s.ApplyDefaults()
	return s
}

func encodeSettings(s domain.Settings) (settingsDoc, error) {
	doc := settingsDoc{
		DefaultView:  string(s.DefaultView),
		WeekStartsOn: s.WeekStartsOn,
		SoundEnabled: s.SoundEnabled,
		Theme:        s.Theme,
		Locale:       s.Locale,
		ShowArchived: s.ShowArchived,
	}
	err := millis([]**int64{&doc.UpdatedAt}, s.UpdatedAt)
	return doc, err
}

func decodeSettings(doc settingsDoc) *domain.Settings {
	s := &domain.Settings{
		DefaultView:  domain.ViewMode(doc.DefaultView),
		WeekStartsOn: doc.WeekStartsOn,
		SoundEnabled: doc.SoundEnabled,
		Theme:        doc.Theme,
		Locale:       doc.Locale,
		ShowArchived: doc.ShowArchived,
		UpdatedAt:    fromMillis(doc.UpdatedAt),
	}
	s.ApplyDefaults()
	return s
}
