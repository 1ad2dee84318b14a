package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingModel is the GORM persistence model for runtime-tunable settings.
type SettingModel struct {
	Key       string    `gorm:"type:varchar(100);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (SettingModel) TableName() string {
	return "settings"
}

// SettingsRepositoryImpl reads and writes the settings table. It satisfies
// settings.Reader for the TTL-cached store.
type SettingsRepositoryImpl struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new GORM-based settings repository.
func NewSettingsRepository(db *gorm.DB) *SettingsRepositoryImpl {
	return &SettingsRepositoryImpl{db: db}
}

// GetValue returns the raw stored value for a key. A missing row is not an
// error; the caller falls back to its default.
func (r *SettingsRepositoryImpl) GetValue(ctx context.Context, key string) (string, bool, error) {
	var model SettingModel
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Value, true, nil
}

// SetValue upserts a setting value.
func (r *SettingsRepositoryImpl) SetValue(ctx context.Context, key, value string) error {
	model := SettingModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
}

// ListAll returns every stored setting keyed by name.
func (r *SettingsRepositoryImpl) ListAll(ctx context.Context) (map[string]string, error) {
	var models []SettingModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(models))
	for _, m := range models {
		out[m.Key] = m.Value
	}
	return out, nil
}
