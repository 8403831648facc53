package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON decodes the value under key into v. found is false when the key
// is absent, in which case v is untouched.
func GetJSON(ctx context.Context, r Repository, key string, v any) (found bool, err error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, r Repository, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.Set(ctx, key, raw)
}

// GetString returns the value as a string; "" with found=false when absent.
func GetString(ctx context.Context, r Repository, key string) (string, bool, error) {
	raw, err := r.Get(ctx, key)
	if err != nil || raw == nil {
		return "", false, err
	}
	return string(raw), true, nil
}

func SetString(ctx context.Context, r Repository, key, value string) error {
	return r.Set(ctx, key, []byte(value))
}

// GetBool reads a "true"/"false" flag; absent or other values yield def.
func GetBool(ctx context.Context, r Repository, key string, def bool) (bool, error) {
	s, found, err := GetString(ctx, r, key)
	if err != nil || !found {
		return def, err
	}
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return def, nil
	}
}

func SetBool(ctx context.Context, r Repository, key string, value bool) error {
	if value {
		return SetString(ctx, r, key, "true")
	}
	return SetString(ctx, r, key, "false")
}
