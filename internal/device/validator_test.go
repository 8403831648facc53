package device

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/chronochat/internal/logging"
	"github.com/dmitrijs2005/chronochat/internal/storage/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo kv.Repository, env Environment) {
	t.Helper()
	_, err := newManager(t, repo, env, nil).GetOrCreateSalt(context.Background())
	require.NoError(t, err)
}

func TestValidator_FirstRunIsConsistent(t *testing.T) {
	v := NewValidator(kv.NewMemoryRepository(), deviceEnv(), logging.Nop())
	r, err := v.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Consistent)
	assert.True(t, r.FirstRun)
}

func TestValidator_SameDevice(t *testing.T) {
	repo := kv.NewMemoryRepository()
	seed(t, repo, deviceEnv())

	ok, err := NewValidator(repo, deviceEnv(), logging.Nop()).IsConsistent(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidator_Mismatches(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Environment)
		field  string
	}{
		{"application id", func(e *Environment) { e.Snapshot.ApplicationID = "other.app" }, "applicationId"},
		{"device id", func(e *Environment) { e.Snapshot.DeviceID = "zzz" }, "androidId"},
		{"classification", func(e *Environment) { e.Classification = Classify(e.Snapshot, false, true) }, "isSimulator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := kv.NewMemoryRepository()
			seed(t, repo, deviceEnv())

			env := deviceEnv()
			tt.mutate(&env)
			r, err := NewValidator(repo, env, logging.Nop()).Check(context.Background())
			require.NoError(t, err)
			assert.False(t, r.Consistent)
			require.Len(t, r.Mismatches, 1)
			assert.Equal(t, tt.field, r.Mismatches[0].Field)

			env.DevBuild = true
			r, err = NewValidator(repo, env, logging.Nop()).Check(context.Background())
			require.NoError(t, err)
			assert.True(t, r.Consistent)
		})
	}
}

func TestValidator_CorruptFingerprint(t *testing.T) {
	repo := kv.NewMemoryRepository()
	require.NoError(t, repo.Set(context.Background(), kv.KeyDeviceFingerprint, []byte("{not json")))

	_, err := NewValidator(repo, deviceEnv(), logging.Nop()).IsConsistent(context.Background())
	require.Error(t, err)
}
