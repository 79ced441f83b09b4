package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// GetDashboardMetricsHandler godoc
// @Summary Dashboard metrics (totals, low stock count, most moved product)
// @Tags metrics
// @Produce json
// @Success 200 {object} repo.Metrics
// @Router /metrics/dashboard [get]
// @Security BearerAuth
func GetDashboardMetricsHandler(w http.ResponseWriter, r *http.Request) {
	metrics, err := metricsRepo.GetDashboardMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to collect dashboard metrics")
		http.Error(w, "failed to collect metrics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
