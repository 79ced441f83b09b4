package repo

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockmanager/backend/internal/models"
)

// InMemoryLedgerStore applies stock changes against the in-memory
// repositories under a single mutex, giving the same all-or-nothing
// behavior the database transaction provides.
type InMemoryLedgerStore struct {
	mu        sync.Mutex
	products  *InMemoryProductRepository
	movements *InMemoryMovementRepository
	sales     *InMemorySaleRepository
}

func NewInMemoryLedgerStore(
	products *InMemoryProductRepository,
	movements *InMemoryMovementRepository,
	sales *InMemorySaleRepository,
) *InMemoryLedgerStore {
	return &InMemoryLedgerStore{products: products, movements: movements, sales: sales}
}

func (s *InMemoryLedgerStore) ApplyMovement(_ context.Context, m models.Movement) (models.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.products.AdjustQuantity(m.ProductID, m.Delta); err != nil {
		return models.Movement{}, err
	}
	m.CreatedAt = time.Now()
	return s.movements.add(m), nil
}

func (s *InMemoryLedgerStore) ApplySale(_ context.Context, sale models.Sale, m models.Movement) (SaleOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.products.GetByID(sale.ProductID)
	if err != nil {
		return SaleOutcome{}, err
	}
	if _, err := s.products.AdjustQuantity(sale.ProductID, m.Delta); err != nil {
		return SaleOutcome{}, err
	}

	sale.TotalPrice = product.Price.Mul(decimal.NewFromInt(int64(sale.Quantity)))
	sale.CreatedAt = time.Now()
	sale = s.sales.add(sale)

	m.CreatedAt = time.Now()
	m = s.movements.add(m)

	return SaleOutcome{Sale: sale, Movement: m, UnitPrice: product.Price}, nil
}
