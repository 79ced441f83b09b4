package handlers

import (
	"net/http"

	"github.com/stockmanager/backend/internal/models"
)

// GetCategoriesHandler godoc
// @Summary List product categories
// @Tags categories
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
// @Security BearerAuth
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := categoryRepo.GetAll()
	if err != nil {
		http.Error(w, "failed to list categories", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}
