package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderTransitions(t *testing.T) {
	assert.True(t, CanTransitionOrder(OrderPlaced, OrderFulfilled))
	assert.True(t, CanTransitionOrder(OrderPlaced, OrderCancelled))
	assert.False(t, CanTransitionOrder(OrderFulfilled, OrderPlaced))
	assert.False(t, CanTransitionOrder(OrderCancelled, OrderFulfilled))
	assert.False(t, CanTransitionOrder(OrderFulfilled, OrderCancelled))
}

func TestPaymentTransitions(t *testing.T) {
	assert.True(t, CanTransitionPayment(PaymentCaptured, PaymentRefunded))
	assert.False(t, CanTransitionPayment(PaymentRefunded, PaymentCaptured))
}

func TestInsufficientStockErrorIs(t *testing.T) {
	err := &InsufficientStockError{ProductID: "p1", Required: 5, Available: 2}
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "required=5")
	assert.Contains(t, err.Error(), "available=2")
}
