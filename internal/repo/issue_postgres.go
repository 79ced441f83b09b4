package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/stockmanager/backend/internal/models"
)

type PostgresIssueRepository struct {
	db *sql.DB
}

func NewPostgresIssueRepository(db *sql.DB) *PostgresIssueRepository {
	return &PostgresIssueRepository{db: db}
}

const issueColumns = `id, type, description, product_id, damaged_pieces, reported_by, status, created_at, updated_at`

func (r *PostgresIssueRepository) Create(i models.Issue) (models.Issue, error) {
	query := `INSERT INTO issues (type, description, product_id, damaged_pieces, reported_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query,
		i.Type, i.Description, i.ProductID, i.DamagedPieces, i.ReportedBy, i.Status).Scan(&i.ID)
	return i, err
}

func (r *PostgresIssueRepository) GetAll() ([]models.Issue, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+issueColumns+` FROM issues ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *PostgresIssueRepository) GetByReporter(reportedBy string) ([]models.Issue, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE reported_by = $1 ORDER BY created_at DESC`, reportedBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *PostgresIssueRepository) UpdateStatus(id int, status string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE issues SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrIssueNotFound
	}
	return nil
}

func scanIssues(rows *sql.Rows) ([]models.Issue, error) {
	var issues []models.Issue
	for rows.Next() {
		var i models.Issue
		if err := rows.Scan(&i.ID, &i.Type, &i.Description, &i.ProductID, &i.DamagedPieces,
			&i.ReportedBy, &i.Status, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}
