package models

import "time"

// KVEntry is one durable storage key, scoped to a client namespace.
type KVEntry struct {
	Namespace string    `gorm:"primaryKey;type:varchar(64)"`
	Key       string    `gorm:"primaryKey;column:storage_key;type:varchar(64)"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName keeps the table name stable regardless of GORM naming strategy.
func (KVEntry) TableName() string {
	return "kv_entries"
}
