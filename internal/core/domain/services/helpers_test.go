package services_test

import (
	"testing"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newOrder(t *testing.T, method order.PaymentMethod) *order.Order {
	t.Helper()
	price, err := kernel.NewMoney(decimal.RequireFromString("250.00"), kernel.DefaultCurrency)
	require.NoError(t, err)
	item, err := order.NewItem(kernel.NewUUID(), "Prego no pão", 2, price)
	require.NoError(t, err)
	total, err := price.Multiply(2)
	require.NoError(t, err)
	payment, err := order.NewPaymentInfo(method, "", total, order.PaymentPending)
	require.NoError(t, err)
	point, err := kernel.NewGeoPoint(-25.9655, 32.5832)
	require.NoError(t, err)
	address, err := order.NewDeliveryAddress(order.AddressParams{
		Street: "Rua da Sé 55", City: "Maputo", Country: "MZ", Point: point,
	})
	require.NoError(t, err)

	o, _, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		[]order.Item{item}, address, payment, placedAt)
	require.NoError(t, err)
	return o
}

func newStateMachine(t *testing.T, vertical workflow.Vertical, clock *fakeClock) *services.OrderStateMachine {
	t.Helper()
	sm, err := services.NewOrderStateMachine(services.StaticRules(workflow.DefaultForVertical(vertical)), clock.Now)
	require.NoError(t, err)
	return sm
}

// walk executes transitions in order, failing the test on the first error.
func walk(t *testing.T, sm *services.OrderStateMachine, o *order.Order, path ...order.Status) {
	t.Helper()
	for _, s := range path {
		_, err := sm.ExecuteTransition(o, s)
		require.NoError(t, err, "transition to %s", s)
	}
}
