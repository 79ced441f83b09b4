package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockmanager/backend/internal/models"
)

// PostgresLedgerStore writes stock changes inside a single database
// transaction. The quantity guard lives in the UPDATE itself, so
// concurrent writers serialize on the product row and the losing
// transaction sees zero affected rows instead of negative stock.
type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{db: db}
}

const applyDeltaQuery = `
	UPDATE products
	SET quantity = quantity + $1, updated_at = NOW()
	WHERE id = $2 AND quantity + $1 >= 0
	RETURNING quantity`

func (s *PostgresLedgerStore) ApplyMovement(ctx context.Context, m models.Movement) (models.Movement, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Movement{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := applyDelta(ctx, tx, m.ProductID, m.Delta); err != nil {
		return models.Movement{}, err
	}

	if err := insertMovement(ctx, tx, &m); err != nil {
		return models.Movement{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Movement{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return m, nil
}

func (s *PostgresLedgerStore) ApplySale(ctx context.Context, sale models.Sale, m models.Movement) (SaleOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaleOutcome{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var unitPrice decimal.Decimal
	err = tx.QueryRowContext(ctx, `SELECT price FROM products WHERE id = $1`, sale.ProductID).Scan(&unitPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return SaleOutcome{}, ErrProductNotFound
	}
	if err != nil {
		return SaleOutcome{}, err
	}

	sale.TotalPrice = unitPrice.Mul(decimal.NewFromInt(int64(sale.Quantity)))

	if _, err := applyDelta(ctx, tx, sale.ProductID, m.Delta); err != nil {
		return SaleOutcome{}, err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO sales (product_id, user_id, quantity, total_price, sale_date, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_at`,
		sale.ProductID, sale.UserID, sale.Quantity, sale.TotalPrice, sale.Date).
		Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return SaleOutcome{}, fmt.Errorf("failed to insert sale: %w", err)
	}

	if err := insertMovement(ctx, tx, &m); err != nil {
		return SaleOutcome{}, err
	}

	if err := tx.Commit(); err != nil {
		return SaleOutcome{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return SaleOutcome{Sale: sale, Movement: m, UnitPrice: unitPrice}, nil
}

// applyDelta runs the guarded quantity update. Zero affected rows means
// either the product does not exist or the change would go negative.
func applyDelta(ctx context.Context, tx *sql.Tx, productID, delta int) (int, error) {
	var newQuantity int
	err := tx.QueryRowContext(ctx, applyDeltaQuery, delta, productID).Scan(&newQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrProductNotFound
		}
		return 0, ErrInvalidQuantityChange
	}
	if err != nil {
		return 0, err
	}
	return newQuantity, nil
}

func insertMovement(ctx context.Context, tx *sql.Tx, m *models.Movement) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO movements (product_id, user_id, type, delta, reason, supplier_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING id, created_at`,
		m.ProductID, m.UserID, m.Type, m.Delta, m.Reason, m.SupplierID).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}
	return nil
}
