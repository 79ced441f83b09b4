package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/stockmanager/backend/internal/alerts"
	"github.com/stockmanager/backend/internal/models"
)

// GetAlertsHandler godoc
// @Summary List low-stock products and today's alert events
// @Tags alerts
// @Produce json
// @Success 200 {object} AlertsResult
// @Router /alerts [get]
// @Security BearerAuth
func GetAlertsHandler(w http.ResponseWriter, r *http.Request) {
	lowStock, err := productRepo.LowStock()
	if err != nil {
		http.Error(w, "failed to list low stock products", http.StatusInternalServerError)
		return
	}
	if lowStock == nil {
		lowStock = []models.Product{}
	}

	events := []alerts.AlertEvent{}
	if alertService != nil {
		events, err = alertService.RecentEvents(r.Context())
		if err != nil {
			log.Warn().Err(err).Msg("failed to read alert events")
			events = []alerts.AlertEvent{}
		}
	}

	writeJSON(w, http.StatusOK, AlertsResult{
		LowStock: lowStock,
		Events:   events,
	})
}
