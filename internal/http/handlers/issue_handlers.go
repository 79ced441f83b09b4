package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockmanager/backend/internal/models"
	"github.com/stockmanager/backend/internal/repo"
)

// CreateIssueHandler godoc
// @Summary Report an issue (damaged pieces, wrong delivery, ...)
// @Tags issues
// @Accept json
// @Produce json
// @Param issue body IssueRequest true "issue to report"
// @Success 201 {object} models.Issue
// @Failure 400 {string} string "Invalid input"
// @Router /issues [post]
// @Security BearerAuth
func CreateIssueHandler(w http.ResponseWriter, r *http.Request) {
	var req IssueRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if req.Type == "" || req.Description == "" {
		http.Error(w, "type and description are required", http.StatusBadRequest)
		return
	}

	reporter, err := GetUserNameFromContext(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	issue, err := issueRepo.Create(models.Issue{
		Type:          req.Type,
		Description:   req.Description,
		ProductID:     req.ProductID,
		DamagedPieces: req.DamagedPieces,
		ReportedBy:    reporter,
		Status:        models.IssueStatusPending,
	})
	if err != nil {
		http.Error(w, "failed to create issue", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

// GetIssuesHandler godoc
// @Summary List issues. Admins see all, employees see their own.
// @Tags issues
// @Produce json
// @Success 200 {array} models.Issue
// @Router /issues [get]
// @Security BearerAuth
func GetIssuesHandler(w http.ResponseWriter, r *http.Request) {
	role, err := GetRoleFromContext(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var issues []models.Issue
	if role == models.RoleAdmin {
		issues, err = issueRepo.GetAll()
	} else {
		var reporter string
		reporter, err = GetUserNameFromContext(r)
		if err == nil {
			issues, err = issueRepo.GetByReporter(reporter)
		}
	}
	if err != nil {
		http.Error(w, "failed to list issues", http.StatusInternalServerError)
		return
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	writeJSON(w, http.StatusOK, issues)
}

// UpdateIssueStatusHandler godoc
// @Summary Update an issue status
// @Tags issues
// @Accept json
// @Produce json
// @Param id path int true "Issue ID"
// @Param status body IssueStatusRequest true "new status"
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Not found"
// @Router /issues/{id}/status [patch]
// @Security BearerAuth
func UpdateIssueStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid issue ID", http.StatusBadRequest)
		return
	}

	var req IssueStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if req.Status != models.IssueStatusPending && req.Status != models.IssueStatusResolved {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	if err := issueRepo.UpdateStatus(id, req.Status); err != nil {
		if errors.Is(err, repo.ErrIssueNotFound) {
			http.Error(w, "issue not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update issue", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "issue updated"})
}
