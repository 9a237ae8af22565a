package models

import (
	"time"
)

const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// DBChange is one row of the change feed written by database triggers.
type DBChange struct {
	ID         uint      `gorm:"primaryKey"`
	Collection string    `gorm:"column:table_name;type:varchar(50);not null;index:idx_table_action"`
	RecordID   int64     `gorm:"not null"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_table_action"`
	ChangedAt  time.Time `gorm:"autoCreateTime"`
	Processed  bool      `gorm:"default:false;index:idx_processed"`
}

func (DBChange) TableName() string {
	return "db_changes"
}
