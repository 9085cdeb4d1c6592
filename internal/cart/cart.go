// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package cart

// Line is one cart entry, mirrored from the server.
//
// The server owns the authoritative cart; the local copy is a read-through
// cache invalidated after every mutation.
type Line struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	StockStatus string  `json:"stock_status"`
}

// Summary is the derived cart aggregate. It is always recomputed from the
// lines, never cached independently of them.
type Summary struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

const (
	FieldProductID = "product_id"
	FieldQuantity  = "quantity"
	FieldPrice     = "price"
	FieldItemID    = "item_id"
)

// Summarize computes the derived aggregate from a line collection. Pure:
// the same lines always yield the same summary.
func Summarize(lines []Line) Summary {
	summary := Summary{}
	for _, line := range lines {
		summary.Count += line.Quantity
		summary.Total += float64(line.Quantity) * line.Price
	}
	return summary
}
