package organizer

import (
	"context"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/workspace"
)

// SettingsPatch carries the preferences to change.
type SettingsPatch struct {
	DefaultView  *domain.ViewMode
	WeekStartsOn *int
	SoundEnabled *bool
	Theme        *string
	Locale       *string
	ShowArchived *bool
}

func (c *Coordinator) Settings() domain.Settings {
	return c.ws.Settings()
}

// UpdateSettings merges the patch into the stored preferences.
func (c *Coordinator) UpdateSettings(ctx context.Context, patch SettingsPatch) (domain.Settings, error) {
	var updated domain.Settings
	_, err := c.commit(ctx, func(tx *workspace.Tx) error {
		s := tx.Settings()
		if patch.DefaultView != nil {
			s.DefaultView = *patch.DefaultView
		}
		if patch.WeekStartsOn != nil {
			s.WeekStartsOn = *patch.WeekStartsOn
		}
		if patch.SoundEnabled != nil {
			s.SoundEnabled = *patch.SoundEnabled
		}
		if patch.Theme != nil {
			s.Theme = *patch.Theme
		}
		if patch.Locale != nil {
			s.Locale = *patch.Locale
		}
		if patch.ShowArchived != nil {
			s.ShowArchived = *patch.ShowArchived
		}
		s.ID = domain.SettingsID
		s.UpdatedAt = c.now()
		if err := domain.Validate(s); err != nil {
			return err
		}
		tx.Put(s)
		updated = s
		return nil
	})
	return updated, err
}
