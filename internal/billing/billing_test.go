package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hostel-order-backend/internal/model"
)

func TestItemsTotal(t *testing.T) {
	testCases := []struct {
		name     string
		items    []model.Item
		expected float64
	}{
		{
			name:     "no items",
			items:    nil,
			expected: 0,
		},
		{
			name: "single item",
			items: []model.Item{
				{Name: "Maggi", Quantity: 2, Price: 150},
			},
			expected: 300,
		},
		{
			name: "multiple items",
			items: []model.Item{
				{Name: "Samosa", Quantity: 4, Price: 15},
				{Name: "Chai", Quantity: 2, Price: 10},
				{Name: "Biryani", Quantity: 1, Price: 120},
			},
			expected: 200,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ItemsTotal(tc.items))
		})
	}
}

// The total must not depend on the order item events arrived in.
func TestItemsTotal_OrderIndependent(t *testing.T) {
	items := []model.Item{
		{Quantity: 3, Price: 40},
		{Quantity: 1, Price: 99},
		{Quantity: 2, Price: 12.5},
	}
	reversed := []model.Item{items[2], items[1], items[0]}

	assert.Equal(t, ItemsTotal(items), ItemsTotal(reversed))
}

func TestFee(t *testing.T) {
	assert.Equal(t, float64(DeliveryFee), Fee(0))
	assert.Equal(t, float64(DeliveryFee), Fee(199))
	// Exactly at the threshold still pays delivery; waiver is strict.
	assert.Equal(t, float64(DeliveryFee), Fee(FreeDeliveryThreshold))
	assert.Equal(t, float64(0), Fee(200.01))
	assert.Equal(t, float64(0), Fee(500))
}

func TestForOrder_EmptyOrder(t *testing.T) {
	// An order with no participants still carries the flat delivery fee.
	totals := ForOrder(nil)
	assert.Equal(t, float64(0), totals.Subtotal)
	assert.Equal(t, float64(20), totals.DeliveryFee)
	assert.Equal(t, float64(20), totals.GrandTotal)
}

func TestForParticipant_AboveThreshold(t *testing.T) {
	totals := ForParticipant([]model.Item{{Quantity: 2, Price: 150}})
	assert.Equal(t, float64(300), totals.Subtotal)
	assert.Equal(t, float64(0), totals.DeliveryFee)
	assert.Equal(t, float64(300), totals.GrandTotal)
}

// Participant-level and order-level fees are computed independently, so the
// participant grand totals need not sum to the order grand total.
func TestFeeDivergence(t *testing.T) {
	a := ForParticipant([]model.Item{{Quantity: 1, Price: 150}}) // 150 + 20
	b := ForParticipant([]model.Item{{Quantity: 1, Price: 100}}) // 100 + 20

	order := ForOrder([]float64{a.Subtotal, b.Subtotal}) // 250 > 200, fee waived

	assert.Equal(t, float64(170), a.GrandTotal)
	assert.Equal(t, float64(120), b.GrandTotal)
	assert.Equal(t, float64(250), order.GrandTotal)
	assert.NotEqual(t, a.GrandTotal+b.GrandTotal, order.GrandTotal)
}
