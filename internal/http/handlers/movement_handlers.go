package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/stockmanager/backend/internal/ledger"
	"github.com/stockmanager/backend/internal/repo"
)

// RecordMovementHandler godoc
// @Summary Record a stock movement (IN, OUT, ADJUST or SALE)
// @Tags movements
// @Accept json
// @Produce json
// @Param movement body map[string]any true "product_id, type, quantity, reason, supplier_id"
// @Success 201 {object} ledger.MovementResult
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Insufficient stock"
// @Router /movements [post]
// @Security BearerAuth
func RecordMovementHandler(w http.ResponseWriter, r *http.Request) {
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
	movementType := ledger.StringFromPayload(payload, "type")
	reason := ledger.StringFromPayload(payload, "reason")

	var supplierID *int
	if id, ok := ledger.IntFromPayload(payload, "supplier_id"); ok {
		supplierID = &id
	}

	userID, err := GetUserIDFromContext(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	result, err := ledgerService.RecordMovement(r.Context(), ledger.MovementInput{
		ProductID:  productID,
		UserID:     userID,
		Type:       movementType,
		Quantity:   quantity,
		Reason:     reason,
		SupplierID: supplierID,
	})
	if err != nil {
		ledgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// parseMovementFilter reads since/until/limit/offset query parameters.
func parseMovementFilter(w http.ResponseWriter, r *http.Request) (repo.MovementFilter, bool) {
	var mf repo.MovementFilter

	sinceStr := r.URL.Query().Get("since")
	untilStr := r.URL.Query().Get("until")

	// Reverse the substitution from + for space in the date parameters,
	// otherwise time.Parse fails. URL query parameters replace + with a
	// space: 2025-07-03T17:44:03+02:00 arrives as 2025-07-03T17:44:03 02:00.
	if len(sinceStr) == len(time.RFC3339) && sinceStr[len(sinceStr)-6] == ' ' {
		sinceStr = sinceStr[:len(sinceStr)-6] + "+" + sinceStr[len(sinceStr)-5:]
	}
	if len(untilStr) == len(time.RFC3339) && untilStr[len(untilStr)-6] == ' ' {
		untilStr = untilStr[:len(untilStr)-6] + "+" + untilStr[len(untilStr)-5:]
	}

	if sinceStr != "" {
		ts, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			log.Warn().Err(err).Str("since", sinceStr).Msg("could not parse since date")
			http.Error(w, "invalid since date format", http.StatusBadRequest)
			return mf, false
		}
		mf.Since = &ts
	}
	if untilStr != "" {
		ts, err := time.Parse(time.RFC3339, untilStr)
		if err != nil {
			log.Warn().Err(err).Str("until", untilStr).Msg("could not parse until date")
			http.Error(w, "invalid until date format", http.StatusBadRequest)
			return mf, false
		}
		mf.Until = &ts
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil {
			http.Error(w, "invalid limit format", http.StatusBadRequest)
			return mf, false
		}
		if v <= 0 {
			http.Error(w, "limit must be greater than zero", http.StatusBadRequest)
			return mf, false
		}
		mf.Limit = &v
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		v, err := strconv.Atoi(offsetStr)
		if err != nil {
			http.Error(w, "invalid offset format", http.StatusBadRequest)
			return mf, false
		}
		if v < 0 {
			http.Error(w, "offset must be zero or positive", http.StatusBadRequest)
			return mf, false
		}
		mf.Offset = &v
	}

	return mf, true
}

// GetMovementsHandler godoc
// @Summary Get the full movement history
// @Tags movements
// @Produce json
// @Param since query string false "Filter movements from this timestamp (RFC3339)"
// @Param until query string false "Filter movements until this timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} MovementsSearchResult
// @Failure 400 {string} string "Invalid input"
// @Router /movements [get]
// @Security BearerAuth
func GetMovementsHandler(w http.ResponseWriter, r *http.Request) {
	mf, ok := parseMovementFilter(w, r)
	if !ok {
		return
	}

	movements, total, err := movementRepo.GetAll(mf)
	if err != nil {
		log.Error().Err(err).Msg("could not retrieve movements")
		http.Error(w, "could not retrieve movements", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MovementsSearchResult{
		Data: movements,
		Meta: Meta{TotalCount: total},
	})
}

// GetProductMovementsHandler godoc
// @Summary Get movement logs for one product
// @Tags movements
// @Produce json
// @Param id path int true "Product ID"
// @Param since query string false "Filter movements from this timestamp (RFC3339)"
// @Param until query string false "Filter movements until this timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} MovementsSearchResult
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Product not found"
// @Router /products/{id}/movements [get]
// @Security BearerAuth
func GetProductMovementsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	if _, err := productRepo.GetByID(id); err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	mf, ok := parseMovementFilter(w, r)
	if !ok {
		return
	}

	movements, total, err := movementRepo.GetByProductID(id, mf)
	if err != nil {
		log.Error().Err(err).Int("product_id", id).Msg("could not retrieve movements")
		http.Error(w, "could not retrieve movements", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MovementsSearchResult{
		Data: movements,
		Meta: Meta{TotalCount: total},
	})
}

// ExportMovementsHandler godoc
// @Summary Export the movement history
// @Tags movements
// @Produce text/csv, application/json
// @Param format query string true "Export format (csv or json)"
// @Param since query string false "Filter from timestamp (RFC3339)"
// @Param until query string false "Filter until timestamp (RFC3339)"
// @Success 200 {file} file
// @Failure 400 {string} string "Invalid input"
// @Failure 500 {string} string "Internal error"
// @Router /movements/export [get]
// @Security BearerAuth
func ExportMovementsHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "csv" && format != "json" {
		http.Error(w, "format must be 'csv' or 'json'", http.StatusBadRequest)
		return
	}

	mf, ok := parseMovementFilter(w, r)
	if !ok {
		return
	}

	movements, _, err := movementRepo.GetAll(mf)
	if err != nil {
		http.Error(w, "could not retrieve movements", http.StatusInternalServerError)
		return
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="movements.json"`)
		json.NewEncoder(w).Encode(movements)

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="movements.csv"`)

		csvWriter := csv.NewWriter(w)
		_ = csvWriter.Write([]string{"id", "product_id", "product", "user", "type", "delta", "reason", "supplier", "created_at"})
		for _, m := range movements {
			_ = csvWriter.Write([]string{
				strconv.Itoa(m.ID),
				strconv.Itoa(m.ProductID),
				m.ProductName,
				m.UserName,
				m.Type,
				strconv.Itoa(m.Delta),
				m.Reason,
				m.SupplierName,
				m.CreatedAt.Format(time.RFC3339),
			})
		}
		csvWriter.Flush()
	}
}
