package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/stockmanager/backend/internal/models"
	"github.com/stockmanager/backend/internal/pdf"
	"github.com/stockmanager/backend/internal/repo"
)

// GenerateInvoiceHandler godoc
// @Summary Generate a PDF invoice for a sale
// @Tags invoices
// @Produce json
// @Param saleId path int true "Sale ID"
// @Success 201 {object} models.Invoice
// @Failure 404 {string} string "Sale not found"
// @Failure 500 {string} string "Internal error"
// @Router /invoices/sales/{saleId} [post]
// @Security BearerAuth
func GenerateInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	saleID, err := strconv.Atoi(chi.URLParam(r, "saleId"))
	if err != nil {
		http.Error(w, "invalid sale ID", http.StatusBadRequest)
		return
	}

	sale, err := saleRepo.GetByID(saleID)
	if err != nil {
		if errors.Is(err, repo.ErrSaleNotFound) {
			http.Error(w, "sale not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	unitPrice := sale.TotalPrice
	if sale.Quantity > 0 {
		unitPrice = sale.TotalPrice.DivRound(decimal.NewFromInt(int64(sale.Quantity)), 2)
	}

	data, err := invoiceGenerator.Generate(pdf.InvoiceData{
		Sale:         sale,
		ProductName:  sale.ProductName,
		EmployeeName: sale.EmployeeName,
		UnitPrice:    unitPrice,
	})
	if err != nil {
		log.Error().Err(err).Int("sale_id", saleID).Msg("failed to generate invoice pdf")
		http.Error(w, "failed to generate invoice", http.StatusInternalServerError)
		return
	}

	invoice, err := invoiceRepo.Create(models.Invoice{
		SaleID:   saleID,
		Filename: fmt.Sprintf("invoice-%d.pdf", saleID),
		Mime:     "application/pdf",
		Size:     len(data),
		Data:     data,
	})
	if err != nil {
		http.Error(w, "failed to store invoice", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

// DownloadInvoiceHandler godoc
// @Summary Download a stored invoice PDF
// @Tags invoices
// @Produce application/pdf
// @Param id path int true "Invoice ID"
// @Success 200 {file} file
// @Failure 404 {string} string "Not found"
// @Router /invoices/{id}/download [get]
// @Security BearerAuth
func DownloadInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid invoice ID", http.StatusBadRequest)
		return
	}

	invoice, err := invoiceRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrInvoiceNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", invoice.Mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(invoice.Size))
	w.Write(invoice.Data)
}

// GetSaleInvoiceHandler godoc
// @Summary Get the latest invoice generated for a sale
// @Tags invoices
// @Produce json
// @Param saleId path int true "Sale ID"
// @Success 200 {object} models.Invoice
// @Failure 404 {string} string "Not found"
// @Router /invoices/sales/{saleId} [get]
// @Security BearerAuth
func GetSaleInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	saleID, err := strconv.Atoi(chi.URLParam(r, "saleId"))
	if err != nil {
		http.Error(w, "invalid sale ID", http.StatusBadRequest)
		return
	}

	invoice, err := invoiceRepo.GetLatestBySale(saleID)
	if err != nil {
		if errors.Is(err, repo.ErrInvoiceNotFound) {
			http.Error(w, "no invoice for this sale", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}
