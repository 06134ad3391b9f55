package reports

import (
	"context"
	"strconv"
	"time"
)

// DashboardSetting is one config-page setting.
type DashboardSetting struct {
	Key       string    `gorm:"column:key;primaryKey" json:"key"`
	Value     string    `gorm:"column:value" json:"value"`
	Category  string    `gorm:"column:category" json:"category"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (DashboardSetting) TableName() string { return "dashboard_settings" }

// GetSetting retrieves a single setting by key.
func (s *Store) GetSetting(ctx context.Context, key string) (*DashboardSetting, error) {
	var setting DashboardSetting
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetSettingOrDefault retrieves the value or returns a default if not found.
func (s *Store) GetSettingOrDefault(ctx context.Context, key, defaultValue string) string {
	setting, err := s.GetSetting(ctx, key)
	if err != nil || setting.Value == "" {
		return defaultValue
	}
	return setting.Value
}

// GetSettingFloat retrieves a numeric setting, e.g. the low-hours
// threshold highlighted on the report table.
func (s *Store) GetSettingFloat(ctx context.Context, key string, defaultValue float64) float64 {
	setting, err := s.GetSetting(ctx, key)
	if err != nil || setting.Value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// SetSetting creates or updates a setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO dashboard_settings (key, value, updated_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value).Error
}

// ListSettings returns every setting in a category.
func (s *Store) ListSettings(ctx context.Context, category string) ([]DashboardSetting, error) {
	var settings []DashboardSetting
	q := s.db.WithContext(ctx).Order("key")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&settings).Error
	return settings, err
}
