package services

import (
	"context"

	"artyra/internal/domain"
	"artyra/internal/validate"
)

type SettingsService struct {
	State *State
	Store SettingsStore
}

func NewSettingsService(st *State, store SettingsStore) *SettingsService {
	return &SettingsService{State: st, Store: store}
}

func (s *SettingsService) Get() domain.StoreSettings { return s.State.Settings() }

// Save replaces the settings row wholesale. A blank name falls back to the default.
func (s *SettingsService) Save(ctx context.Context, in domain.StoreSettings) (domain.StoreSettings, error) {
	name := validate.Text(in.StoreName, 80)
	if name == "" {
		name = domain.DefaultStoreName
	}
	logo, ok := validate.URL(in.LogoURL)
	if !ok {
		return domain.StoreSettings{}, ErrInvalidSettings
	}
	saved, err := s.Store.Upsert(ctx, domain.StoreSettings{StoreName: name, LogoURL: logo})
	if err != nil {
		return domain.StoreSettings{}, &PersistenceError{Op: "settings.upsert", Err: err}
	}
	s.State.setSettings(saved)
	return saved, nil
}
