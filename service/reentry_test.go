package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReentryGuard_AcquireRelease(t *testing.T) {
	guard := NewReentryGuard()

	require.NoError(t, guard.Acquire(1))

	err := guard.Acquire(1)
	assert.ErrorIs(t, err, ErrReentrantCall)

	// A different raffle is unaffected
	require.NoError(t, guard.Acquire(2))
	guard.Release(2)

	guard.Release(1)
	assert.NoError(t, guard.Acquire(1))
	guard.Release(1)
}

func TestOperatorGate_RequireOperator(t *testing.T) {
	gate := NewOperatorGate("operator")

	assert.NoError(t, gate.RequireOperator("operator"))
	assert.ErrorIs(t, gate.RequireOperator("alice"), ErrUnauthorized)
	assert.ErrorIs(t, gate.RequireOperator(""), ErrUnauthorized)
}

func TestOperatorGate_TransferOperator(t *testing.T) {
	gate := NewOperatorGate("operator")

	err := gate.TransferOperator("alice", "bob")
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = gate.TransferOperator("operator", "")
	assert.ErrorIs(t, err, ErrInvalidReference)

	require.NoError(t, gate.TransferOperator("operator", "successor"))
	assert.Equal(t, "successor", gate.Operator())
	assert.ErrorIs(t, gate.RequireOperator("operator"), ErrUnauthorized)
	assert.NoError(t, gate.RequireOperator("successor"))
}
