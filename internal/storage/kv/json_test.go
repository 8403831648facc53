package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHelpers(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	type lock struct {
		LockUntil int64 `json:"lockUntil"`
		Attempts  int   `json:"attempts"`
	}

	var got lock
	found, err := GetJSON(ctx, r, KeyLockout, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, r, KeyLockout, lock{LockUntil: 42, Attempts: 5}))
	raw, _ := r.Get(ctx, KeyLockout)
	assert.JSONEq(t, `{"lockUntil":42,"attempts":5}`, string(raw))

	found, err = GetJSON(ctx, r, KeyLockout, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, lock{LockUntil: 42, Attempts: 5}, got)

	require.NoError(t, r.Set(ctx, KeyLockout, []byte("{not json")))
	found, err = GetJSON(ctx, r, KeyLockout, &got)
	assert.True(t, found)
	require.ErrorContains(t, err, "decode "+KeyLockout)
}

func TestBoolHelpers(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	v, err := GetBool(ctx, r, KeyShowTags, true)
	require.NoError(t, err)
	assert.True(t, v, "absent falls back to default")

	require.NoError(t, SetBool(ctx, r, KeyShowTags, false))
	raw, _ := r.Get(ctx, KeyShowTags)
	assert.Equal(t, "false", string(raw))

	v, err = GetBool(ctx, r, KeyShowTags, true)
	require.NoError(t, err)
	assert.False(t, v)

	require.NoError(t, SetString(ctx, r, KeyShowTags, "garbage"))
	v, _ = GetBool(ctx, r, KeyShowTags, true)
	assert.True(t, v)
}
