package models

import "time"

const (
	IssueStatusPending  = "pending"
	IssueStatusResolved = "resolved"
)

// Issue is a problem report filed by an employee against a product
// (damaged pieces, wrong delivery, ...).
type Issue struct {
	ID            int       `json:"id"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	ProductID     int       `json:"product_id"`
	DamagedPieces int       `json:"damaged_pieces"`
	ReportedBy    string    `json:"reported_by"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
