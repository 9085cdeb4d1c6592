// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package wishlist

// Item is one wishlist entry.
//
// The entry ID is distinct from the product ID: removal is addressed by the
// entry, never by the product it points at.
type Item struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Product   Product `json:"product"`
}

// Product is the denormalized snapshot stored alongside each entry so the
// wishlist page renders without a catalog round trip.
type Product struct {
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	InStock  bool    `json:"in_stock"`
	BrandID  string  `json:"brand_id"`
	Category string  `json:"category"`
}

const (
	FieldProductID = "product_id"
	FieldEntryID   = "entry_id"
)
