package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opdexport/quotation-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository handles key/value application settings with JSON payloads
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*domain.AppSetting, error) {
	var setting domain.AppSetting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert writes a setting, inserting or replacing the value for the key
func (r *SettingRepository) Upsert(ctx context.Context, key, value string) error {
	setting := domain.AppSetting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

// GetExchangeConfig loads the admin rate override. A missing row means no
// override is configured and yields a zero-value config, not an error.
func (r *SettingRepository) GetExchangeConfig(ctx context.Context) (*domain.ExchangeRateConfig, error) {
	setting, err := r.Get(ctx, domain.ExchangeRateConfigKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.ExchangeRateConfig{}, nil
		}
		return nil, fmt.Errorf("failed to load exchange rate config: %w", err)
	}

	var cfg domain.ExchangeRateConfig
	if err := json.Unmarshal([]byte(setting.Value), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode exchange rate config: %w", err)
	}
	return &cfg, nil
}

// SaveExchangeConfig persists the admin rate override
func (r *SettingRepository) SaveExchangeConfig(ctx context.Context, cfg *domain.ExchangeRateConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode exchange rate config: %w", err)
	}
	return r.Upsert(ctx, domain.ExchangeRateConfigKey, string(payload))
}
