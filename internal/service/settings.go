package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/repo"
	"github.com/Skotchmaster/markethub/internal/settings"
)

type SettingsService struct {
	Registry *settings.Registry
}

func NewSettingsService(reg *settings.Registry) *SettingsService {
	return &SettingsService{Registry: reg}
}

// List returns every setting to an administrator and only the public
// subset to everyone else.
func (s *SettingsService) List(ctx context.Context, admin bool) ([]models.Setting, error) {
	all, err := s.Registry.List(ctx)
	if err != nil {
		return nil, err
	}
	if admin {
		return all, nil
	}
	return settings.Public(all), nil
}

func (s *SettingsService) Update(ctx context.Context, key, value string) (*models.Setting, error) {
	if value == "" {
		return nil, fail(ErrValidation, "Value is required")
	}
	st, err := s.Registry.Update(ctx, strings.TrimSpace(key), value)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fail(ErrNotFound, "Setting not found")
		}
		return nil, err
	}
	return st, nil
}
