package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/model"
)

func TestValidateTransitionForwardPath(t *testing.T) {
	steps := []model.OrderStatus{
		model.OrderStatusPending,
		model.OrderStatusConfirmed,
		model.OrderStatusPreparing,
		model.OrderStatusReady,
		model.OrderStatusOutForDelivery,
		model.OrderStatusDelivered,
	}
	for i := 0; i < len(steps)-1; i++ {
		assert.NoError(t, ValidateTransition(steps[i], steps[i+1]),
			"%s -> %s should be allowed", steps[i], steps[i+1])
	}
}

func TestValidateTransitionNoSkipping(t *testing.T) {
	tests := []struct {
		from, to model.OrderStatus
	}{
		{model.OrderStatusPending, model.OrderStatusPreparing},
		{model.OrderStatusPending, model.OrderStatusDelivered},
		{model.OrderStatusConfirmed, model.OrderStatusReady},
		{model.OrderStatusPreparing, model.OrderStatusOutForDelivery},
		{model.OrderStatusReady, model.OrderStatusDelivered},
	}
	for _, tt := range tests {
		err := ValidateTransition(tt.from, tt.to)
		require.Error(t, err, "%s -> %s should be rejected", tt.from, tt.to)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
	}
}

func TestValidateTransitionNoBackwards(t *testing.T) {
	tests := []struct {
		from, to model.OrderStatus
	}{
		{model.OrderStatusConfirmed, model.OrderStatusPending},
		{model.OrderStatusPreparing, model.OrderStatusConfirmed},
		{model.OrderStatusOutForDelivery, model.OrderStatusReady},
	}
	for _, tt := range tests {
		err := ValidateTransition(tt.from, tt.to)
		require.Error(t, err, "%s -> %s should be rejected", tt.from, tt.to)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
	}
}

func TestValidateTransitionCancellation(t *testing.T) {
	cancellable := []model.OrderStatus{
		model.OrderStatusPending,
		model.OrderStatusConfirmed,
		model.OrderStatusPreparing,
		model.OrderStatusReady,
		model.OrderStatusOutForDelivery,
	}
	for _, from := range cancellable {
		assert.NoError(t, ValidateTransition(from, model.OrderStatusCancelled),
			"%s should be cancellable", from)
	}
}

func TestValidateTransitionTerminalStates(t *testing.T) {
	for _, from := range []model.OrderStatus{model.OrderStatusDelivered, model.OrderStatusCancelled} {
		for _, to := range []model.OrderStatus{
			model.OrderStatusPending,
			model.OrderStatusConfirmed,
			model.OrderStatusCancelled,
			model.OrderStatusDelivered,
		} {
			err := ValidateTransition(from, to)
			require.Error(t, err, "%s -> %s should be rejected", from, to)
			assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
		}
	}
}

func TestValidateTransitionUnknownStatus(t *testing.T) {
	err := ValidateTransition("shipped", model.OrderStatusDelivered)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	err = ValidateTransition(model.OrderStatusPending, "shipped")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestAllowedNext(t *testing.T) {
	assert.ElementsMatch(t,
		[]model.OrderStatus{model.OrderStatusConfirmed, model.OrderStatusCancelled},
		AllowedNext(model.OrderStatusPending),
	)
	assert.ElementsMatch(t,
		[]model.OrderStatus{model.OrderStatusDelivered, model.OrderStatusCancelled},
		AllowedNext(model.OrderStatusOutForDelivery),
	)
	assert.Nil(t, AllowedNext(model.OrderStatusDelivered))
	assert.Nil(t, AllowedNext(model.OrderStatusCancelled))
}
