package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stockmanager/backend/internal/models"
)

type PostgresSaleRepository struct {
	db *sql.DB
}

func NewPostgresSaleRepository(db *sql.DB) *PostgresSaleRepository {
	return &PostgresSaleRepository{db: db}
}

const saleColumns = `s.id, s.product_id, s.user_id, s.quantity, s.total_price, s.date, s.created_at,
	p.name, COALESCE(u.name, '')`

func (r *PostgresSaleRepository) GetAll() ([]models.Sale, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sales s
		JOIN products p ON s.product_id = p.id
		LEFT JOIN users u ON s.user_id = u.id
		ORDER BY s.date DESC`, saleColumns)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSales(rows)
}

func (r *PostgresSaleRepository) GetByID(id int) (models.Sale, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sales s
		JOIN products p ON s.product_id = p.id
		LEFT JOIN users u ON s.user_id = u.id
		WHERE s.id = $1`, saleColumns)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var s models.Sale
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.ProductID, &s.UserID, &s.Quantity, &s.TotalPrice, &s.Date, &s.CreatedAt,
			&s.ProductName, &s.EmployeeName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Sale{}, ErrSaleNotFound
	}
	return s, err
}

// Report aggregates per-employee sales performance and returns the
// filtered sales list alongside it.
func (r *PostgresSaleRepository) Report(from, to *time.Time) (SalesReport, error) {
	where := " WHERE 1=1"
	args := []any{}
	argIndex := 1

	if from != nil {
		where += fmt.Sprintf(" AND s.date >= $%d", argIndex)
		args = append(args, *from)
		argIndex++
	}
	if to != nil {
		where += fmt.Sprintf(" AND s.date <= $%d", argIndex)
		args = append(args, *to)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	statsQuery := fmt.Sprintf(`
		SELECT u.id, u.name, COUNT(s.id), COALESCE(SUM(s.quantity), 0), COALESCE(SUM(s.total_price), 0)
		FROM sales s
		JOIN users u ON s.user_id = u.id
		%s
		GROUP BY u.id, u.name
		ORDER BY u.name ASC`, where)

	report := SalesReport{Stats: []EmployeeSalesStat{}, Sales: []models.Sale{}}

	statRows, err := r.db.QueryContext(ctx, statsQuery, args...)
	if err != nil {
		return SalesReport{}, err
	}
	defer statRows.Close()
	for statRows.Next() {
		var st EmployeeSalesStat
		if err := statRows.Scan(&st.UserID, &st.EmployeeName, &st.SalesCount, &st.TotalUnits, &st.TotalRevenue); err != nil {
			return SalesReport{}, err
		}
		report.Stats = append(report.Stats, st)
	}
	if err := statRows.Err(); err != nil {
		return SalesReport{}, err
	}

	salesQuery := fmt.Sprintf(`
		SELECT %s
		FROM sales s
		JOIN products p ON s.product_id = p.id
		LEFT JOIN users u ON s.user_id = u.id
		%s
		ORDER BY s.date DESC`, saleColumns, where)

	saleRows, err := r.db.QueryContext(ctx, salesQuery, args...)
	if err != nil {
		return SalesReport{}, err
	}
	defer saleRows.Close()

	sales, err := scanSales(saleRows)
	if err != nil {
		return SalesReport{}, err
	}
	report.Sales = sales
	return report, nil
}

func scanSales(rows *sql.Rows) ([]models.Sale, error) {
	var sales []models.Sale
	for rows.Next() {
		var s models.Sale
		if err := rows.Scan(&s.ID, &s.ProductID, &s.UserID, &s.Quantity, &s.TotalPrice, &s.Date, &s.CreatedAt,
			&s.ProductName, &s.EmployeeName); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
