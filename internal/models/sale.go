package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a customer-facing transaction. It is always created together
// with a SALE movement in the same database transaction.
type Sale struct {
	ID         int             `json:"id"`
	ProductID  int             `json:"product_id"`
	UserID     *int            `json:"user_id,omitempty"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Date       time.Time       `json:"date"`
	CreatedAt  time.Time       `json:"created_at"`

	// Joined display fields, populated on listings only.
	ProductName  string `json:"product_name,omitempty"`
	EmployeeName string `json:"employee_name,omitempty"`
}
