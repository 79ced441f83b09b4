package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockmanager/backend/internal/alerts"
	"github.com/stockmanager/backend/internal/models"
	"github.com/stockmanager/backend/internal/repo"
)

type Meta struct {
	TotalCount int `json:"totalCount"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResult struct {
	Token string `json:"token"`
}

type EmployeeRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type ProductRequest struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	MinStock   int             `json:"min_stock"`
	MaxStock   int             `json:"max_stock"`
	Threshold  int             `json:"low_stock_alert"`
	CategoryID *int            `json:"category_id"`
	SupplierID *int            `json:"supplier_id"`
}

type SupplierRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

type MovementsSearchResult struct {
	Data []models.Movement `json:"data"`
	Meta Meta              `json:"meta"`
}

type SaleRequest struct {
	ProductID int        `json:"product_id"`
	Quantity  int        `json:"quantity"`
	SaleDate  *time.Time `json:"sale_date"`
}

type IssueRequest struct {
	Type          string `json:"type"`
	Description   string `json:"description"`
	ProductID     int    `json:"product_id"`
	DamagedPieces int    `json:"damaged_pieces"`
}

type IssueStatusRequest struct {
	Status string `json:"status"`
}

type AlertsResult struct {
	LowStock []models.Product    `json:"low_stock"`
	Events   []alerts.AlertEvent `json:"events"`
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

type SalesReportResult struct {
	From  *time.Time       `json:"from,omitempty"`
	To    *time.Time       `json:"to,omitempty"`
	Stats repo.SalesReport `json:"report"`
}
