package db

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/terraincognita07/integra/internal/models"
)

// AuditRepository persists the lake access trail. It satisfies
// lake.AuditSink.
type AuditRepository struct {
	database *gorm.DB
}

func NewAuditRepository(database *gorm.DB) *AuditRepository {
	return &AuditRepository{database: database}
}

// WriteEntry appends one audit row. detail may be nil.
func (repo *AuditRepository) WriteEntry(action string, category string, records int, detail map[string]any) error {
	entry := models.AuditEntry{
		EntryID:  uuid.NewString(),
		Action:   action,
		Category: category,
		Records:  records,
	}

	if len(detail) > 0 {
		serialized, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("marshal audit detail: %w", err)
		}
		entry.Detail = datatypes.JSON(serialized)
	}

	if err := repo.database.Create(&entry).Error; err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first, at most limit rows.
func (repo *AuditRepository) ListRecent(limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries := make([]models.AuditEntry, 0, limit)
	if err := repo.database.Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByAction returns how many entries exist for one action.
func (repo *AuditRepository) CountByAction(action string) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.AuditEntry{}).Where("action = ?", action).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
