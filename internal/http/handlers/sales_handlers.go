package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/stockmanager/backend/internal/ledger"
	"github.com/stockmanager/backend/internal/models"
	"github.com/stockmanager/backend/internal/repo"
)

// RecordSaleHandler godoc
// @Summary Record a sale
// @Tags sales
// @Accept json
// @Produce json
// @Param sale body map[string]any true "product_id, quantity, sale_date"
// @Success 201 {object} ledger.SaleResult
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Product not found"
// @Failure 409 {string} string "Insufficient stock"
// @Router /sales [post]
// @Security BearerAuth
func RecordSaleHandler(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := readJSON(w, r, &payload); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	quantity, err := ledger.QuantityFromPayload(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	productID, _ := ledger.IntFromPayload(payload, "product_id")

	var saleDate *time.Time
	if dateStr := ledger.StringFromPayload(payload, "sale_date"); dateStr != "" {
		ts, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			http.Error(w, "invalid sale_date format", http.StatusBadRequest)
			return
		}
		saleDate = &ts
	}

	userID, err := GetUserIDFromContext(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	result, err := ledgerService.RecordSale(r.Context(), ledger.SaleInput{
		ProductID: productID,
		UserID:    userID,
		Quantity:  quantity,
		Date:      saleDate,
	})
	if err != nil {
		ledgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// GetSalesHandler godoc
// @Summary List all sales
// @Tags sales
// @Produce json
// @Success 200 {array} models.Sale
// @Router /sales [get]
// @Security BearerAuth
func GetSalesHandler(w http.ResponseWriter, r *http.Request) {
	sales, err := saleRepo.GetAll()
	if err != nil {
		log.Error().Err(err).Msg("could not retrieve sales")
		http.Error(w, "could not retrieve sales", http.StatusInternalServerError)
		return
	}
	if sales == nil {
		sales = []models.Sale{}
	}
	writeJSON(w, http.StatusOK, sales)
}

// GetSaleByIDHandler godoc
// @Summary Get a sale by ID
// @Tags sales
// @Produce json
// @Param id path int true "Sale ID"
// @Success 200 {object} models.Sale
// @Failure 404 {string} string "Not found"
// @Router /sales/{id} [get]
// @Security BearerAuth
func GetSaleByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid sale ID", http.StatusBadRequest)
		return
	}

	sale, err := saleRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrSaleNotFound) {
			http.Error(w, "sale not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

// GetSalesReportHandler godoc
// @Summary Per-employee sales report over a date range
// @Tags sales
// @Produce json
// @Param from query string false "Range start (RFC3339)"
// @Param to query string false "Range end (RFC3339)"
// @Success 200 {object} SalesReportResult
// @Failure 400 {string} string "Invalid input"
// @Failure 403 {string} string "Forbidden"
// @Router /sales/report [get]
// @Security BearerAuth
func GetSalesReportHandler(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		ts, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			http.Error(w, "invalid from date format", http.StatusBadRequest)
			return
		}
		from = &ts
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		ts, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			http.Error(w, "invalid to date format", http.StatusBadRequest)
			return
		}
		to = &ts
	}

	report, err := saleRepo.Report(from, to)
	if err != nil {
		log.Error().Err(err).Msg("could not build sales report")
		http.Error(w, "could not build sales report", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, SalesReportResult{
		From:  from,
		To:    to,
		Stats: report,
	})
}
