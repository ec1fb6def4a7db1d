package services

import (
	"context"
	"errors"
	"fmt"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// SettingStore is the part of the setting repository this service consumes
type SettingStore interface {
	Get(ctx context.Context, key string) (*models.SystemSetting, error)
	List(ctx context.Context) ([]*models.SystemSetting, error)
	Upsert(ctx context.Context, key, value string) error
}

type SettingService struct {
	settings SettingStore
}

func NewSettingService(settings SettingStore) *SettingService {
	return &SettingService{settings: settings}
}

// ListSettings returns every key-value row for the settings page
func (s *SettingService) ListSettings(ctx context.Context) ([]*models.SystemSetting, error) {
	return s.settings.List(ctx)
}

// GetSetting fetches one setting by key
func (s *SettingService) GetSetting(ctx context.Context, key string) (*models.SystemSetting, error) {
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return setting, nil
}

// UpdateSetting writes a value, creating the key when it is new
func (s *SettingService) UpdateSetting(ctx context.Context, key, value string) (*models.SystemSetting, error) {
	if key == "" {
		return nil, fmt.Errorf("setting key is required: %w", apperrors.ErrValidation)
	}
	if err := s.settings.Upsert(ctx, key, value); err != nil {
		return nil, fmt.Errorf("updating setting %q: %w", key, err)
	}
	return s.settings.Get(ctx, key)
}
