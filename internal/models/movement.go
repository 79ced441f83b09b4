package models

import "time"

// Movement types. The type is the single source of truth for the sign
// of the delta: IN adds stock, everything else removes it.
const (
	MovementTypeIn     = "IN"
	MovementTypeOut    = "OUT"
	MovementTypeAdjust = "ADJUST"
	MovementTypeSale   = "SALE"
)

// Movement is an append-only audit record of a quantity change.
type Movement struct {
	ID         int       `json:"id"`
	ProductID  int       `json:"product_id"`
	UserID     int       `json:"user_id"`
	Type       string    `json:"type"`
	Delta      int       `json:"delta"`
	Reason     string    `json:"reason,omitempty"`
	SupplierID *int      `json:"supplier_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// Joined display fields, populated on listings only.
	ProductName  string `json:"product_name,omitempty"`
	UserName     string `json:"user_name,omitempty"`
	SupplierName string `json:"supplier_name,omitempty"`
}
