package repo

import (
	"time"

	"github.com/stockmanager/backend/internal/models"
)

type InMemoryIssueRepository struct {
	issues []models.Issue
	nextID int
}

func NewInMemoryIssueRepository() *InMemoryIssueRepository {
	return &InMemoryIssueRepository{
		issues: []models.Issue{},
		nextID: 1,
	}
}

func (r *InMemoryIssueRepository) Create(issue models.Issue) (models.Issue, error) {
	issue.ID = r.nextID
	r.nextID++
	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	r.issues = append(r.issues, issue)
	return issue, nil
}

func (r *InMemoryIssueRepository) GetAll() ([]models.Issue, error) {
	out := make([]models.Issue, len(r.issues))
	for i, issue := range r.issues {
		out[len(r.issues)-1-i] = issue
	}
	return out, nil
}

func (r *InMemoryIssueRepository) GetByReporter(reportedBy string) ([]models.Issue, error) {
	var out []models.Issue
	for i := len(r.issues) - 1; i >= 0; i-- {
		if r.issues[i].ReportedBy == reportedBy {
			out = append(out, r.issues[i])
		}
	}
	return out, nil
}

func (r *InMemoryIssueRepository) UpdateStatus(id int, status string) error {
	for i, issue := range r.issues {
		if issue.ID == id {
			r.issues[i].Status = status
			r.issues[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrIssueNotFound
}

func (r *InMemoryIssueRepository) Clear() {
	r.issues = []models.Issue{}
	r.nextID = 1
}
