package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockmanager/backend/internal/models"
)

// ProductRepository defines the interface for product data operations.
type ProductRepository interface {
	Create(product models.Product) (models.Product, error)
	GetAll() ([]models.Product, error)
	GetByID(id int) (models.Product, error)
	GetByName(name string) (models.Product, error)
	Update(product models.Product) (models.Product, error)
	Delete(id int) error
	LowStock() ([]models.Product, error)
}

type SupplierRepository interface {
	Create(supplier models.Supplier) (models.Supplier, error)
	GetAll() ([]models.Supplier, error)
	GetByID(id int) (models.Supplier, error)
	Update(supplier models.Supplier) (models.Supplier, error)
	Delete(id int) error
	Exists(id int) (bool, error)
}

// MovementFilter narrows movement listings by date range and paginates.
type MovementFilter struct {
	Since  *time.Time
	Until  *time.Time
	Offset *int
	Limit  *int
}

// MovementRepository reads the append-only movement log. Movements are
// only ever written by the stock ledger.
type MovementRepository interface {
	GetAll(mf MovementFilter) ([]models.Movement, int, error)
	GetByProductID(productID int, mf MovementFilter) ([]models.Movement, int, error)
}

// EmployeeSalesStat is one row of the per-employee sales ranking.
type EmployeeSalesStat struct {
	UserID       int    `json:"user_id"`
	EmployeeName string `json:"employee_name"`
	SalesCount   int    `json:"sales_count"`
	TotalUnits   int    `json:"total_units"`
	TotalRevenue string `json:"total_revenue"`
}

// SalesReport bundles the stats ranking with the full filtered list.
type SalesReport struct {
	Stats []EmployeeSalesStat `json:"stats"`
	Sales []models.Sale       `json:"sales"`
}

// SaleRepository reads sales. Sales are only written by the stock ledger.
type SaleRepository interface {
	GetAll() ([]models.Sale, error)
	GetByID(id int) (models.Sale, error)
	Report(from, to *time.Time) (SalesReport, error)
}

type UserRepository interface {
	CreateUser(u models.User) (models.User, error)
	GetByEmail(email string) (models.User, error)
	GetByID(id int) (models.User, error)
	GetEmployees() ([]models.User, error)
	UpdateUser(u models.User, updatePassword bool) error
	DeleteUser(id int) error
	EmailInUse(email string, excludeID int) (bool, error)
}

type IssueRepository interface {
	Create(issue models.Issue) (models.Issue, error)
	GetAll() ([]models.Issue, error)
	GetByReporter(reportedBy string) ([]models.Issue, error)
	UpdateStatus(id int, status string) error
}

type InvoiceRepository interface {
	Create(invoice models.Invoice) (models.Invoice, error)
	GetByID(id int) (models.Invoice, error)
	GetLatestBySale(saleID int) (models.Invoice, error)
}

type CategoryRepository interface {
	GetAll() ([]models.Category, error)
}

// SaleOutcome is what a committed sale transaction produced.
type SaleOutcome struct {
	Sale      models.Sale     `json:"sale"`
	Movement  models.Movement `json:"movement"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LedgerStore applies stock changes atomically. Each call is a single
// transaction: either every write inside it lands, or none do. The
// stock guard rejects any change that would drive quantity below zero
// with ErrInvalidQuantityChange, and a missing product surfaces as
// ErrProductNotFound.
type LedgerStore interface {
	// ApplyMovement adjusts the product quantity by m.Delta and appends
	// the movement row, returning it with its assigned ID.
	ApplyMovement(ctx context.Context, m models.Movement) (models.Movement, error)

	// ApplySale reads the current unit price, computes the sale total,
	// decrements stock and records both the sale and its SALE movement.
	// s.TotalPrice is computed inside the transaction and must not be
	// set by the caller.
	ApplySale(ctx context.Context, s models.Sale, m models.Movement) (SaleOutcome, error)
}
