package models

import "github.com/shopspring/decimal"

// Product represents a catalog item with its quantity on hand.
// Quantity is only mutated through the stock ledger or direct
// administrative edits; it never goes below zero.
type Product struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	MinStock   int             `json:"min_stock"`
	MaxStock   int             `json:"max_stock"`
	Threshold  int             `json:"low_stock_alert"`
	CategoryID *int            `json:"category_id,omitempty"`
	SupplierID *int            `json:"supplier_id,omitempty"`
	CreatedAt  string          `json:"created_at,omitempty"`
	UpdatedAt  string          `json:"updated_at,omitempty"`

	// Joined display fields, populated on listings only.
	CategoryName string `json:"category_name,omitempty"`
	SupplierName string `json:"supplier_name,omitempty"`
}

// LowStock reports whether the product has fallen below its alert threshold.
func (p Product) LowStock() bool {
	return p.Quantity < p.Threshold
}
