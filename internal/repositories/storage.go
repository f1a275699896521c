package repositories

import "errors"

// ErrStorageUnavailable is returned by storage implementations that are disabled or full.
var ErrStorageUnavailable = errors.New("storage unavailable")

// KeyValueStorage defines the durable key-value storage a client's state is kept in.
// Get reports ok=false for a key that was never written or has been removed.
type KeyValueStorage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// StorageFactory returns the storage for a client namespace.
type StorageFactory func(namespace string) KeyValueStorage
