package repo

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockmanager/backend/internal/models"
)

type InMemorySaleRepository struct {
	sales  []models.Sale
	nextID int
}

func NewInMemorySaleRepository() *InMemorySaleRepository {
	return &InMemorySaleRepository{
		sales:  []models.Sale{},
		nextID: 1,
	}
}

// add appends a sale and assigns its ID. Only the ledger store calls this.
func (r *InMemorySaleRepository) add(s models.Sale) models.Sale {
	s.ID = r.nextID
	r.nextID++
	r.sales = append(r.sales, s)
	return s
}

func (r *InMemorySaleRepository) GetAll() ([]models.Sale, error) {
	out := make([]models.Sale, len(r.sales))
	for i, s := range r.sales {
		out[len(r.sales)-1-i] = s
	}
	return out, nil
}

func (r *InMemorySaleRepository) GetByID(id int) (models.Sale, error) {
	for _, s := range r.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Sale{}, ErrSaleNotFound
}

func (r *InMemorySaleRepository) Report(from, to *time.Time) (SalesReport, error) {
	report := SalesReport{
		Stats: []EmployeeSalesStat{},
		Sales: []models.Sale{},
	}

	byUser := map[int]*EmployeeSalesStat{}
	for _, s := range r.sales {
		if from != nil && s.Date.Before(*from) {
			continue
		}
		if to != nil && s.Date.After(*to) {
			continue
		}
		report.Sales = append(report.Sales, s)

		if s.UserID == nil {
			continue
		}
		stat, ok := byUser[*s.UserID]
		if !ok {
			stat = &EmployeeSalesStat{UserID: *s.UserID, EmployeeName: s.EmployeeName, TotalRevenue: "0"}
			byUser[*s.UserID] = stat
		}
		stat.SalesCount++
		stat.TotalUnits += s.Quantity
		revenue, _ := decimal.NewFromString(stat.TotalRevenue)
		stat.TotalRevenue = revenue.Add(s.TotalPrice).String()
	}

	for _, stat := range byUser {
		report.Stats = append(report.Stats, *stat)
	}
	sort.Slice(report.Stats, func(i, j int) bool {
		a, _ := decimal.NewFromString(report.Stats[i].TotalRevenue)
		b, _ := decimal.NewFromString(report.Stats[j].TotalRevenue)
		return a.GreaterThan(b)
	})

	return report, nil
}

func (r *InMemorySaleRepository) Clear() {
	r.sales = []models.Sale{}
	r.nextID = 1
}
