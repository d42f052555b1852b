// internal/domain/settings/service.go
package settings

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service holds store settings in an in-memory snapshot refreshed on
// an interval. Hot paths (middleware) read the snapshot and never the
// database.
type Service struct {
	db     *gorm.DB
	logger *logrus.Entry

	mu       sync.RWMutex
	snapshot map[string]string
}

// NewService creates a settings service with an empty snapshot. Call
// Refresh once at startup before serving traffic.
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:       db,
		logger:   logger.WithField("component", "settings"),
		snapshot: map[string]string{},
	}
}

// Refresh reloads the snapshot from the database
func (s *Service) Refresh() error {
	var rows []Setting
	if err := s.db.Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	snapshot := make(map[string]string, len(rows))
	for _, row := range rows {
		snapshot[row.Key] = row.Value
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
	return nil
}

// Get returns a setting from the snapshot
func (s *Service) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.snapshot[key]
	return value, ok
}

// GetBool returns a boolean setting, false if absent or unparseable
func (s *Service) GetBool(key string) bool {
	value, ok := s.Get(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}

// MaintenanceMode reports whether the store is in maintenance mode
func (s *Service) MaintenanceMode() bool {
	return s.GetBool(KeyMaintenanceMode)
}

// All returns a copy of the current snapshot
func (s *Service) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.snapshot))
	for k, v := range s.snapshot {
		out[k] = v
	}
	return out
}

// Set upserts a setting and refreshes the snapshot so admin changes
// take effect without waiting for the next scheduled refresh.
func (s *Service) Set(key, value string) error {
	if key == "" {
		return errs.Validation("setting key is required")
	}

	var existing Setting
	err := s.db.Where("key = ?", key).First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		if err := s.db.Create(&Setting{Key: key, Value: value}).Error; err != nil {
			return fmt.Errorf("failed to create setting: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to query setting: %w", err)
	default:
		if err := s.db.Model(&existing).Update("value", value).Error; err != nil {
			return fmt.Errorf("failed to update setting: %w", err)
		}
	}

	if err := s.Refresh(); err != nil {
		s.logger.WithError(err).Warn("failed to refresh settings snapshot after write")
	}
	return nil
}
