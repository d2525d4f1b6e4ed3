package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"strata/internal/dependency"
)

func TestNewBaseComponent(t *testing.T) {
	key := dependency.NewKey("storage", "postgres")
	base := NewBaseComponent(key)

	assert.Equal(t, key, base.Key())
	assert.Equal(t, StateUnknown, base.State())
	assert.NoError(t, base.LastError())
}

func TestBaseComponent_UpdateState(t *testing.T) {
	base := NewBaseComponent(dependency.NewKey("storage", "postgres"))

	type transition struct {
		oldState State
		newState State
		err      error
	}
	var transitions []transition
	base.SetStateChangeCallback(func(key dependency.ComponentKey, oldState, newState State, err error) {
		assert.Equal(t, "storage/postgres", key.String())
		transitions = append(transitions, transition{oldState, newState, err})
	})

	failure := errors.New("dial tcp: refused")
	base.UpdateState(StateInitializing, nil)
	base.UpdateState(StateInitializing, nil) // no change, no callback
	base.UpdateState(StateFailed, failure)

	assert.Equal(t, StateFailed, base.State())
	assert.Equal(t, failure, base.LastError())
	assert.Equal(t, []transition{
		{StateUnknown, StateInitializing, nil},
		{StateInitializing, StateFailed, failure},
	}, transitions)
}

func TestBaseComponent_WithoutCallback(t *testing.T) {
	base := NewBaseComponent(dependency.NewKey("cache", "redis"))

	// Should not panic without a callback
	base.UpdateState(StateRunning, nil)
	assert.Equal(t, StateRunning, base.State())
}
