package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stockmanager/backend/internal/models"
)

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

func (r *PostgresProductRepository) Create(p models.Product) (models.Product, error) {
	query := `INSERT INTO products (name, quantity, price, min_stock, max_stock, low_stock_alert, category_id, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()) RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Quantity, p.Price, p.MinStock, p.MaxStock, p.Threshold, p.CategoryID, p.SupplierID).
		Scan(&p.ID)
	return p, err
}

func (r *PostgresProductRepository) GetAll() ([]models.Product, error) {
	query := `
		SELECT p.id, p.name, p.quantity, p.price, p.min_stock, p.max_stock, p.low_stock_alert,
		       p.category_id, p.supplier_id,
		       COALESCE(c.name, ''), COALESCE(s.name, '')
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		LEFT JOIN suppliers s ON p.supplier_id = s.id
		ORDER BY p.id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.Price, &p.MinStock, &p.MaxStock, &p.Threshold,
			&p.CategoryID, &p.SupplierID, &p.CategoryName, &p.SupplierName); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresProductRepository) GetByID(id int) (models.Product, error) {
	query := `SELECT id, name, quantity, price, min_stock, max_stock, low_stock_alert, category_id, supplier_id
		FROM products WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var p models.Product
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.Quantity, &p.Price, &p.MinStock, &p.MaxStock, &p.Threshold, &p.CategoryID, &p.SupplierID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *PostgresProductRepository) GetByName(name string) (models.Product, error) {
	query := `SELECT id, name, quantity, price, min_stock, max_stock, low_stock_alert, category_id, supplier_id
		FROM products WHERE name = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var p models.Product
	err := r.db.QueryRowContext(ctx, query, name).
		Scan(&p.ID, &p.Name, &p.Quantity, &p.Price, &p.MinStock, &p.MaxStock, &p.Threshold, &p.CategoryID, &p.SupplierID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

// Update rewrites every editable field, quantity included: direct
// administrative edits go through here, ledger adjustments do not.
func (r *PostgresProductRepository) Update(p models.Product) (models.Product, error) {
	query := `UPDATE products
		SET name = $1, quantity = $2, price = $3, min_stock = $4, max_stock = $5, low_stock_alert = $6,
		    category_id = $7, supplier_id = $8, updated_at = NOW()
		WHERE id = $9`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query,
		p.Name, p.Quantity, p.Price, p.MinStock, p.MaxStock, p.Threshold, p.CategoryID, p.SupplierID, p.ID)
	if err != nil {
		return models.Product{}, err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r *PostgresProductRepository) Delete(id int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// LowStock returns products that have fallen below their alert threshold.
func (r *PostgresProductRepository) LowStock() ([]models.Product, error) {
	query := `
		SELECT p.id, p.name, p.quantity, p.price, p.min_stock, p.max_stock, p.low_stock_alert,
		       p.category_id, p.supplier_id,
		       COALESCE(c.name, ''), COALESCE(s.name, '')
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		LEFT JOIN suppliers s ON p.supplier_id = s.id
		WHERE p.quantity < p.low_stock_alert
		ORDER BY p.quantity ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.Price, &p.MinStock, &p.MaxStock, &p.Threshold,
			&p.CategoryID, &p.SupplierID, &p.CategoryName, &p.SupplierName); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
