// Package billing computes the money totals shown on an order: per-item
// amounts, per-participant subtotals and the order-level summary. All of it
// is derived state; nothing here is stored.
package billing

import "hostel-order-backend/internal/model"

const (
	// DeliveryFee is the flat fee charged below the free-delivery threshold.
	DeliveryFee = 20
	// FreeDeliveryThreshold is the subtotal above which delivery is free.
	FreeDeliveryThreshold = 200
)

// Totals is a subtotal with its delivery fee applied.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	GrandTotal  float64 `json:"grandTotal"`
}

// Fee returns the delivery fee for a subtotal: waived strictly above the
// threshold, flat otherwise.
func Fee(subtotal float64) float64 {
	if subtotal > FreeDeliveryThreshold {
		return 0
	}
	return DeliveryFee
}

// ItemsTotal sums quantity × price over a participant's items. The result
// is independent of item order.
func ItemsTotal(items []model.Item) float64 {
	var total float64
	for _, item := range items {
		total += item.Quantity * item.Price
	}
	return total
}

// ForSubtotal applies the fee rule to a subtotal.
//
// The same rule is applied independently at the participant level and the
// order level, so the participant grand totals are not required to sum to
// the order grand total. That mirrors how the totals have always been
// presented; do not collapse the two computations into one.
func ForSubtotal(subtotal float64) Totals {
	fee := Fee(subtotal)
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		GrandTotal:  subtotal + fee,
	}
}

// ForParticipant computes a participant's totals from their items.
func ForParticipant(items []model.Item) Totals {
	return ForSubtotal(ItemsTotal(items))
}

// ForOrder computes the order summary from the participants' subtotals.
func ForOrder(participantSubtotals []float64) Totals {
	var subtotal float64
	for _, s := range participantSubtotals {
		subtotal += s
	}
	return ForSubtotal(subtotal)
}
