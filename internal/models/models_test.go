package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCents(t *testing.T) {
	c, err := ToCents(5000)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), c)

	c, err = ToCents(19.99)
	require.NoError(t, err)
	assert.Equal(t, int64(1999), c)

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := ToCents(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	assert.Equal(t, 50.5, FromCents(5050))
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range OrderStatuses() {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatusUnset.Valid())
	assert.False(t, OrderStatus("Lost").Valid())
}

func TestOrder_DisplayStatusAndTotals(t *testing.T) {
	o := &Order{
		Items: []OrderItem{
			{ProductID: "a", PriceCents: 1000, Quantity: 2},
			{ProductID: "b", PriceCents: 250, Quantity: 1},
		},
		Status: OrderStatusPlaced,
	}
	assert.Equal(t, PendingPaymentLabel, o.DisplayStatus())
	o.Payment = true
	assert.Equal(t, "Order Placed", o.DisplayStatus())
	assert.Equal(t, int64(2250), o.SubtotalCents())
	assert.Equal(t, "flutterwave", PaymentMethodFlutterwave.Tag())
	assert.Equal(t, "Ada Obi", Address{FirstName: "Ada", LastName: "Obi"}.FullName())
}
