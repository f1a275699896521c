package repositories

import (
	"errors"
	"fmt"
	"time"

	"ayuta/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMKeyValueStorage is a GORM implementation of KeyValueStorage.
// Every key lives under the storage's namespace so clients never share values.
type GORMKeyValueStorage struct {
	db        *gorm.DB
	namespace string
}

// NewGORMKeyValueStorage creates a new instance of GORMKeyValueStorage.
func NewGORMKeyValueStorage(db *gorm.DB, namespace string) *GORMKeyValueStorage {
	return &GORMKeyValueStorage{
		db:        db,
		namespace: namespace,
	}
}

// NewGORMStorageFactory returns a factory for namespaced GORM storages sharing db.
func NewGORMStorageFactory(db *gorm.DB) StorageFactory {
	return func(namespace string) KeyValueStorage {
		return NewGORMKeyValueStorage(db, namespace)
	}
}

// Get retrieves a single key from the database.
func (r *GORMKeyValueStorage) Get(key string) (string, bool, error) {
	var entry models.KVEntry
	err := r.db.First(&entry, "namespace = ? AND storage_key = ?", r.namespace, key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set upserts a single key in the database.
func (r *GORMKeyValueStorage) Set(key, value string) error {
	entry := models.KVEntry{
		Namespace: r.namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove deletes a single key from the database.
func (r *GORMKeyValueStorage) Remove(key string) error {
	res := r.db.Delete(&models.KVEntry{}, "namespace = ? AND storage_key = ?", r.namespace, key)
	if res.Error != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, res.Error)
	}
	return nil
}
