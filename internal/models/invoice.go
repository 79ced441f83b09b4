package models

import "time"

// Invoice is a rendered PDF stored for a sale.
type Invoice struct {
	ID        int       `json:"id"`
	SaleID    int       `json:"sale_id"`
	Filename  string    `json:"filename"`
	Mime      string    `json:"mime"`
	Size      int       `json:"size"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
