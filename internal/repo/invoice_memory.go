package repo

import (
	"time"

	"github.com/stockmanager/backend/internal/models"
)

type InMemoryInvoiceRepository struct {
	invoices []models.Invoice
	nextID   int
}

func NewInMemoryInvoiceRepository() *InMemoryInvoiceRepository {
	return &InMemoryInvoiceRepository{
		invoices: []models.Invoice{},
		nextID:   1,
	}
}

func (r *InMemoryInvoiceRepository) Create(invoice models.Invoice) (models.Invoice, error) {
	invoice.ID = r.nextID
	r.nextID++
	invoice.CreatedAt = time.Now()
	r.invoices = append(r.invoices, invoice)
	return invoice, nil
}

func (r *InMemoryInvoiceRepository) GetByID(id int) (models.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return models.Invoice{}, ErrInvoiceNotFound
}

func (r *InMemoryInvoiceRepository) GetLatestBySale(saleID int) (models.Invoice, error) {
	for i := len(r.invoices) - 1; i >= 0; i-- {
		if r.invoices[i].SaleID == saleID {
			return r.invoices[i], nil
		}
	}
	return models.Invoice{}, ErrInvoiceNotFound
}

func (r *InMemoryInvoiceRepository) Clear() {
	r.invoices = []models.Invoice{}
	r.nextID = 1
}
