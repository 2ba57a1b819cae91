package domain

// SettingsID is the fixed identifier of the settings singleton.
const SettingsID = "settings"

// ViewMode is one of the alternate arrangements a board can be shown in.
type ViewMode string

const (
	ViewList     ViewMode = "list"
	ViewKanban   ViewMode = "kanban"
	ViewCalendar ViewMode = "calendar"
)

// Settings holds user preferences. There is exactly one record.
type Settings struct {
	ID           string    `json:"id"`
	DefaultView  ViewMode  `json:"defaultView" validate:"required,oneof=list kanban calendar"`
	WeekStartsOn int       `json:"weekStartsOn" validate:"gte=0,lte=6"`
	SoundEnabled bool      `json:"soundEnabled"`
	Theme        string    `json:"theme,omitempty"`
	Locale       string    `json:"locale,omitempty"`
	ShowArchived bool      `json:"showArchived"`
	UpdatedAt    Timestamp `json:"updatedAt,omitempty"`
}

// DefaultSettings returns the settings used when none were stored yet.
func DefaultSettings() *Settings {
	return &Settings{
		ID:           SettingsID,
		DefaultView:  ViewList,
		WeekStartsOn: 1,
		SoundEnabled: true,
	}
}

// ApplyDefaults fills absent optional fields with their defaults.
func (s *Settings) ApplyDefaults() {
	if s == nil {
		return
	}
	s.ID = SettingsID
	if s.DefaultView == "" {
		s.DefaultView = ViewList
	}
}

func (s Settings) RecordKind() Kind {
	return KindSettings
}

func (s Settings) RecordID() string {
	return SettingsID
}
