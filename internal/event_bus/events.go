package event_bus

import "time"

const (
	StorageSavedType   EventType = "storage.saved"
	StorageRemovedType EventType = "storage.removed"
	StorageFailedType  EventType = "storage.failed"
)

// StorageSaved is published after an entry was written under its namespaced key.
// Key is the logical key, without the namespace prefix.
type StorageSaved struct {
	Key        string
	SourcePage string
	Timestamp  time.Time
	ExpiresAt  *time.Time
	Shared     bool
}

// StorageRemoved is published when an entry is deleted, explicitly or because it expired.
type StorageRemoved struct {
	Key     string
	Expired bool
}

// StorageFailed is published when a write could not be completed (serialization
// error, quota exceeded, backend unavailable...). Nothing is retried.
type StorageFailed struct {
	Key       string
	Operation string
	Err       error
}
