package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWipeByteArray(t *testing.T) {
	buf := []byte("123456")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 6), buf)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	for _, e := range []error{ErrValidation, ErrInvalidBackup, ErrSecurityViolation, ErrLocked, ErrCancelled} {
		wrapped := fmt.Errorf("op: %w", e)
		assert.True(t, errors.Is(wrapped, e), e.Error())
	}
	assert.False(t, errors.Is(ErrLocked, ErrCancelled))
}
