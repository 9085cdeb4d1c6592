// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package catalog

// Product is a storefront catalog item.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	BrandID     string   `json:"brand_id"`
	CategoryID  string   `json:"category_id"`
	StockStatus string   `json:"stock_status"`
	Wattage     int      `json:"wattage"`
}

// Brand is a manufacturer as shown on the storefront.
type Brand struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Category is a storefront product grouping.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Parent string `json:"parent_id"`
}

// Filter narrows a product listing.
type Filter struct {
	Search     string // free text, normalized before dispatch
	BrandID    string
	CategoryID string
}
