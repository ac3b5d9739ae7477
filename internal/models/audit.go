package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions recorded against the lake.
const (
	AuditActionCollect = "collect"
	AuditActionQuery   = "query"
)

// AuditEntry is one row of the tamper-evident access trail for the record
// lake. Entries are append-only.
type AuditEntry struct {
	ID        uint           `gorm:"primaryKey"`
	EntryID   string         `gorm:"not null;uniqueIndex"`
	Action    string         `gorm:"not null;index"`
	Category  string         `gorm:"not null;index"`
	Records   int            `gorm:"not null;default:0"`
	Detail    datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time      `gorm:"not null"`
}
