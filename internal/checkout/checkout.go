// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package checkout

// Address is the delivery destination for an order.
type Address struct {
	FullName string `json:"full_name"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Phone    string `json:"phone"`
}

// Draft is the ephemeral checkout state. It is never persisted: abandoning
// checkout simply drops it.
//
// An applied coupon carries its discount amount resolved at application
// time. Changing the cart afterwards does NOT recompute the discount; the
// caller re-applies the coupon to refresh it.
type Draft struct {
	ShippingAddress Address
	CouponCode      string
	AppliedDiscount float64
	DeliveryFee     float64
	TaxRate         float64
}

// Totals is the derived money breakdown for a draft.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Fee      float64 `json:"fee"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// Totals computes the money breakdown for the given cart subtotal. Pure:
// total = subtotal + fee + tax − discount, with tax = subtotal × rate.
func (d Draft) Totals(subtotal float64) Totals {
	tax := subtotal * d.TaxRate
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Fee:      d.DeliveryFee,
		Discount: d.AppliedDiscount,
		Total:    subtotal + d.DeliveryFee + tax - d.AppliedDiscount,
	}
}

// OrderResult is the outcome of order creation: either a payment-provider
// redirect (online payment) or a direct order id (offline methods).
type OrderResult struct {
	OrderID     string `json:"order_id"`
	RedirectURL string `json:"redirect_url"`
	Reference   string `json:"reference"`
}

// PaymentStatus is the provider-verified state of a payment reference.
type PaymentStatus struct {
	Reference string `json:"reference"`
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	Paid      bool   `json:"paid"`
}

const (
	FieldFullName   = "full_name"
	FieldLine1      = "line1"
	FieldCity       = "city"
	FieldState      = "state"
	FieldPhone      = "phone"
	FieldCouponCode = "code"
	FieldReference  = "reference"
)
