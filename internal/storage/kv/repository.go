// Package kv is the flat, string-keyed persistence used for notes, settings
// and credential material. Three backends share one contract: SQLite (the
// default, on disk), Redis, and an in-process map.
package kv

import (
	"context"
)

// Keys of the persisted entries.
const (
	KeyNotes             = "chronochat_notes"
	KeyShowTags          = "chronochat_show_tags"
	KeyPasscode          = "chronochat_passcode_encrypted"
	KeyDeviceSalt        = "chronochat_device_salt"
	KeyDeviceFingerprint = "chronochat_device_info"
	KeySimulatorMode     = "chronochat_simulator_mode"
	KeyLockout           = "chronochat_lock_data"
)

// Repository is a key/value store.
//
// Get returns (nil, nil) when the key is absent. Delete of an absent key is
// not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// SetMany writes all pairs atomically: either every key is updated or none.
	SetMany(ctx context.Context, values map[string][]byte) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	Close() error
}
