package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stockmanager/backend/internal/models"
)

const defaultLimit = 100

type PostgresMovementRepository struct {
	db *sql.DB
}

func NewPostgresMovementRepository(db *sql.DB) *PostgresMovementRepository {
	return &PostgresMovementRepository{db: db}
}

// GetAll returns the movement history, newest first, joined with
// product, user and supplier names.
func (r *PostgresMovementRepository) GetAll(mf MovementFilter) ([]models.Movement, int, error) {
	return r.query(0, mf)
}

// GetByProductID returns all movements for a specific product.
func (r *PostgresMovementRepository) GetByProductID(productID int, mf MovementFilter) ([]models.Movement, int, error) {
	return r.query(productID, mf)
}

func (r *PostgresMovementRepository) query(productID int, mf MovementFilter) ([]models.Movement, int, error) {
	whereClause, args := buildMovementWhere(productID, mf)

	total, err := r.getTotal(whereClause, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	// limit = 0 means count only
	if mf.Limit != nil && *mf.Limit == 0 {
		return []models.Movement{}, total, nil
	}
	if mf.Offset != nil && *mf.Offset < 0 {
		return nil, 0, fmt.Errorf("offset must be non-negative")
	}
	if mf.Offset != nil && *mf.Offset >= total {
		return []models.Movement{}, total, nil
	}

	query := fmt.Sprintf(`
		SELECT m.id, m.product_id, m.user_id, m.type, m.delta, COALESCE(m.reason, ''), m.supplier_id, m.created_at,
		       p.name, u.name, COALESCE(s.name, '')
		FROM movements m
		JOIN products p ON m.product_id = p.id
		JOIN users u ON m.user_id = u.id
		LEFT JOIN suppliers s ON m.supplier_id = s.id
		%s ORDER BY m.created_at DESC`, whereClause)

	argIndex := len(args) + 1
	limit := defaultLimit
	if mf.Limit != nil && *mf.Limit > 0 {
		limit = min(*mf.Limit, defaultLimit)
	}
	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)
	argIndex++

	if mf.Offset != nil && *mf.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, *mf.Offset)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var movements []models.Movement
	for rows.Next() {
		var m models.Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.UserID, &m.Type, &m.Delta, &m.Reason, &m.SupplierID, &m.CreatedAt,
			&m.ProductName, &m.UserName, &m.SupplierName); err != nil {
			return nil, 0, err
		}
		movements = append(movements, m)
	}
	return movements, total, rows.Err()
}

func buildMovementWhere(productID int, mf MovementFilter) (string, []any) {
	args := []any{}
	whereClause := "WHERE 1=1"
	argIndex := 1

	if productID != 0 {
		whereClause += fmt.Sprintf(" AND m.product_id = $%d", argIndex)
		args = append(args, productID)
		argIndex++
	}
	if mf.Since != nil {
		whereClause += fmt.Sprintf(" AND m.created_at >= $%d", argIndex)
		args = append(args, *mf.Since)
		argIndex++
	}
	if mf.Until != nil {
		whereClause += fmt.Sprintf(" AND m.created_at <= $%d", argIndex)
		args = append(args, *mf.Until)
	}

	return whereClause, args
}

func (r *PostgresMovementRepository) getTotal(whereClause string, args []any) (int, error) {
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM movements m %s", whereClause)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	return total, err
}
