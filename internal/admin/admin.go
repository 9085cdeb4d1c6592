// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package admin

import "time"

// PendingLogin is the step-one result of the admin OTP flow: the password
// was accepted and a one-time code was dispatched, but no session exists
// yet. The AdminID is the required input to step two.
type PendingLogin struct {
	AdminID string `json:"admin_id"`
	Message string `json:"message"`
}

// Order is a customer order as the dashboard sees it.
type Order struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
	Reference  string    `json:"reference"`
	CreatedAt  time.Time `json:"created_at"`
}

// Customer is a storefront account record.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Coupon is a discount code.
type Coupon struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Discount  float64    `json:"discount"`
	ExpiresAt *time.Time `json:"expires_at"`
	Active    bool       `json:"active"`
}

// Brand is a manufacturer record (panels, inverters, batteries).
type Brand struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Category is a product grouping.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Parent string `json:"parent_id"`
}

// Transaction is a payment-provider settlement record.
type Transaction struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Reference string    `json:"reference"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the operator's own account record.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
}

const (
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldOTP      = "otp"
	FieldAdminID  = "admin_id"
)
