package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stockmanager/backend/internal/models"
)

type PostgresInvoiceRepository struct {
	db *sql.DB
}

func NewPostgresInvoiceRepository(db *sql.DB) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{db: db}
}

func (r *PostgresInvoiceRepository) Create(inv models.Invoice) (models.Invoice, error) {
	query := `INSERT INTO invoices (sale_id, filename, mime, size, data, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, inv.SaleID, inv.Filename, inv.Mime, inv.Size, inv.Data).Scan(&inv.ID)
	return inv, err
}

func (r *PostgresInvoiceRepository) GetByID(id int) (models.Invoice, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var inv models.Invoice
	err := r.db.QueryRowContext(ctx,
		`SELECT id, sale_id, filename, mime, size, data, created_at FROM invoices WHERE id = $1`, id).
		Scan(&inv.ID, &inv.SaleID, &inv.Filename, &inv.Mime, &inv.Size, &inv.Data, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Invoice{}, ErrInvoiceNotFound
	}
	return inv, err
}

// GetLatestBySale returns the most recent invoice generated for a sale.
func (r *PostgresInvoiceRepository) GetLatestBySale(saleID int) (models.Invoice, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var inv models.Invoice
	err := r.db.QueryRowContext(ctx,
		`SELECT id, sale_id, filename, mime, size, data, created_at FROM invoices WHERE sale_id = $1 ORDER BY id DESC LIMIT 1`,
		saleID).
		Scan(&inv.ID, &inv.SaleID, &inv.Filename, &inv.Mime, &inv.Size, &inv.Data, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Invoice{}, ErrInvoiceNotFound
	}
	return inv, err
}
