package guard_test

import (
	"errors"
	"testing"

	"buyback/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("properly_constructed_guard_returns_nil", func(t *testing.T) {
		// Given
		g := guard.NewConstructorGuard()

		// When
		err := g.Validate(errors.New("not constructed"))

		// Then
		require.NoError(t, err)
	})

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard
		expectedError := errors.New("label request not constructed")

		// When
		err := g.Validate(expectedError)

		// Then
		require.Error(t, err)
		assert.Equal(t, expectedError, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(nil)

		// Then
		require.ErrorIs(t, err, guard.ErrDefaultConstructorGuard)
	})
}

// TestConstructorGuardUsageExample shows the guard embedded in a command-like value.
func TestConstructorGuardUsageExample(t *testing.T) {
	type voidRequest struct {
		orderID int64
		slots   []string
		guard   guard.ConstructorGuard
	}

	errVoidRequestNotConstructed := errors.New("voidRequest must be created via newVoidRequest")

	newVoidRequest := func(orderID int64, slots ...string) (voidRequest, error) {
		if orderID <= 0 {
			return voidRequest{}, errors.New("order id must be positive")
		}
		if len(slots) == 0 {
			return voidRequest{}, errors.New("at least one slot is required")
		}
		return voidRequest{orderID: orderID, slots: slots, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructed_value_validates", func(t *testing.T) {
		req, err := newVoidRequest(100001, "outbound", "inbound")
		require.NoError(t, err)
		require.NoError(t, req.guard.Validate(errVoidRequestNotConstructed))
		assert.Equal(t, []string{"outbound", "inbound"}, req.slots)
	})

	t.Run("zero_value_fails", func(t *testing.T) {
		var req voidRequest
		assert.Equal(t, errVoidRequestNotConstructed, req.guard.Validate(errVoidRequestNotConstructed))
	})

	t.Run("constructor_rejects_bad_input", func(t *testing.T) {
		_, err := newVoidRequest(0, "outbound")
		require.Error(t, err)

		_, err = newVoidRequest(100001)
		require.Error(t, err)
	})
}

func TestConstructorGuardCopiesByValue(t *testing.T) {
	g := guard.NewConstructorGuard()
	copied := g

	require.NoError(t, g.Validate(nil))
	require.NoError(t, copied.Validate(nil))
}
