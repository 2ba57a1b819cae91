package aztables

import (
	"encoding/json"

	"github.com/fastygo/taskboard/domain"
)

const edmDateTime = "Edm.DateTime"

type entityKeys struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
}

// Every date property carries an explicit Edm.DateTime annotation so the service stores it
// as a typed instant. Absent optional properties are omitted together with their annotation.

type boardEntity struct {
	entityKeys
	Title         string  `json:"Title"`
	Order         int     `json:"Order"`
	ParentID      string  `json:"ParentId,omitempty"`
	IsArchived    bool    `json:"IsArchived"`
	IsFavorite    bool    `json:"IsFavorite"`
	Collapsed     bool    `json:"Collapsed"`
	CreatedAt     string  `json:"CreatedAt,omitempty"`
	CreatedAtType *string `json:"CreatedAt@odata.type,omitempty"`
}

type taskEntity struct {
	entityKeys
	Title           string  `json:"Title"`
	Description     string  `json:"Description,omitempty"`
	Status          string  `json:"Status,omitempty"`
	Priority        string  `json:"Priority,omitempty"`
	Tags            string  `json:"Tags,omitempty"`
	DueDate         string  `json:"DueDate,omitempty"`
	DueDateType     *string `json:"DueDate@odata.type,omitempty"`
	BoardID         string  `json:"BoardId"`
	Order           int     `json:"Order"`
	Archived        bool    `json:"Archived"`
	ArchivedAt      string  `json:"ArchivedAt,omitempty"`
	ArchivedAtType  *string `json:"ArchivedAt@odata.type,omitempty"`
	CreatedAt       string  `json:"CreatedAt,omitempty"`
	CreatedAtType   *string `json:"CreatedAt@odata.type,omitempty"`
	CompletedAt     string  `json:"CompletedAt,omitempty"`
	CompletedAtType *string `json:"CompletedAt@odata.type,omitempty"`
}

type sessionEntity struct {
	entityKeys
	TaskID          string  `json:"TaskId,omitempty"`
	Kind            string  `json:"Kind,omitempty"`
	StartedAt       string  `json:"StartedAt,omitempty"`
	StartedAtType   *string `json:"StartedAt@odata.type,omitempty"`
	EndedAt         string  `json:"EndedAt,omitempty"`
	EndedAtType     *string `json:"EndedAt@odata.type,omitempty"`
	DurationMinutes int     `json:"DurationMinutes"`
}

type settingsEntity struct {
	entityKeys
	DefaultView   string  `json:"DefaultView,omitempty"`
	WeekStartsOn  int     `json:"WeekStartsOn"`
	SoundEnabled  bool    `json:"SoundEnabled"`
	Theme         string  `json:"Theme,omitempty"`
	Locale        string  `json:"Locale,omitempty"`
	ShowArchived  bool    `json:"ShowArchived"`
	UpdatedAt     string  `json:"UpdatedAt,omitempty"`
	UpdatedAtType *string `json:"UpdatedAt@odata.type,omitempty"`
}

func dateTime(ts domain.Timestamp) (string, *string) {
	if ts.IsZero() {
		return "", nil
	}
	t := edmDateTime
	return ts.String(), &t
}

// readTime normalizes the service's 7-digit precision back to canonical form.
func readTime(raw string) domain.Timestamp {
	ts, err := domain.ParseTimestamp(raw)
	if err != nil {
		return ""
	}
	return ts
}

func encodeBoard(partition string, b domain.Board) boardEntity {
	e := boardEntity{
		entityKeys: entityKeys{PartitionKey: partition, RowKey: b.ID},
		Title:      b.Title,
		Order:      b.Order,
		ParentID:   b.ParentID,
		IsArchived: b.IsArchived,
		IsFavorite: b.IsFavorite,
		Collapsed:  b.Collapsed,
	}
	e.CreatedAt, e.CreatedAtType = dateTime(b.CreatedAt)
	return e
}

func decodeBoard(e boardEntity) domain.Board {
	return domain.Board{
		ID:         e.RowKey,
		Title:      e.Title,
		Order:      e.Order,
		ParentID:   e.ParentID,
		IsArchived: e.IsArchived,
		IsFavorite: e.IsFavorite,
		Collapsed:  e.Collapsed,
		CreatedAt:  readTime(e.CreatedAt),
	}
}

func encodeTask(partition string, t domain.Task) (taskEntity, error) {
	e := taskEntity{
		entityKeys:  entityKeys{PartitionKey: partition, RowKey: t.ID},
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		BoardID:     t.BoardID,
		Order:       t.Order,
		Archived:    t.Archived,
	}
	if len(t.Tags) > 0 {
		tags, err := json.Marshal(t.Tags)
		if err != nil {
			return taskEntity{}, err
		}
		e.Tags = string(tags)
	}
	e.DueDate, e.DueDateType = dateTime(t.DueDate)
	e.ArchivedAt, e.ArchivedAtType = dateTime(t.ArchivedAt)
	e.CreatedAt, e.CreatedAtType = dateTime(t.CreatedAt)
	e.CompletedAt, e.CompletedAtType = dateTime(t.CompletedAt)
	return e, nil
}

func decodeTask(e taskEntity) domain.Task {
	t := domain.Task{
		ID:          e.RowKey,
		Title:       e.Title,
		Description: e.Description,
		Status:      domain.Status(e.Status),
		Priority:    domain.Priority(e.Priority),
		DueDate:     readTime(e.DueDate),
		BoardID:     e.BoardID,
		Order:       e.Order,
		Archived:    e.Archived,
		ArchivedAt:  readTime(e.ArchivedAt),
		CreatedAt:   readTime(e.CreatedAt),
		CompletedAt: readTime(e.CompletedAt),
	}
	if e.Tags != "" {
		// A corrupt tag list decodes as no tags.
		_ = json.Unmarshal([]byte(e.Tags), &t.Tags)
	}
	t.ApplyDefaults()
	return t
}

func encodeSession(partition string, s domain.Session) sessionEntity {
	e := sessionEntity{
		entityKeys:      entityKeys{PartitionKey: partition, RowKey: s.ID},
		TaskID:          s.TaskID,
		Kind:            string(s.Kind),
		DurationMinutes: s.DurationMinutes,
	}
	e.StartedAt, e.StartedAtType = dateTime(s.StartedAt)
	e.EndedAt, e.EndedAtType = dateTime(s.EndedAt)
	return e
}

func decodeSession(e sessionEntity) domain.Session {
	s := domain.Session{
		ID:              e.RowKey,
		TaskID:          e.TaskID,
		Kind:            domain.SessionKind(e.Kind),
		StartedAt:       readTime(e.StartedAt),
		EndedAt:         readTime(e.EndedAt),
		DurationMinutes: e.DurationMinutes,
	}
	s.ApplyDefaults()
	return s
}

func encodeSettings(partition string, s domain.Settings) settingsEntity {
	e := settingsEntity{
		entityKeys:   entityKeys{PartitionKey: partition, RowKey: domain.SettingsID},
		DefaultView:  string(s.DefaultView),
		WeekStartsOn: s.WeekStartsOn,
		SoundEnabled: s.SoundEnabled,
		Theme:        s.Theme,
		Locale:       s.Locale,
		ShowArchived: s.ShowArchived,
	}
	e.UpdatedAt, e.UpdatedAtType = dateTime(s.UpdatedAt)
	return e
}

func decodeSettings(e settingsEntity) *domain.Settings {
	s := &domain.Settings{
		DefaultView:  domain.ViewMode(e.DefaultView),
		WeekStartsOn: e.WeekStartsOn,
		SoundEnabled: e.SoundEnabled,
		Theme:        e.Theme,
		Locale:       e.Locale,
		ShowArchived: e.ShowArchived,
		UpdatedAt:    readTime(e.UpdatedAt),
	}
	s.ApplyDefaults()
	return s
}
