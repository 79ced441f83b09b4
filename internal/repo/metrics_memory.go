package repo

// InMemoryMetricsRepository derives dashboard metrics from the other
// in-memory repositories.
type InMemoryMetricsRepository struct {
	products  *InMemoryProductRepository
	movements *InMemoryMovementRepository
	sales     *InMemorySaleRepository
}

func NewInMemoryMetricsRepository(
	products *InMemoryProductRepository,
	movements *InMemoryMovementRepository,
	sales *InMemorySaleRepository,
) *InMemoryMetricsRepository {
	return &InMemoryMetricsRepository{products: products, movements: movements, sales: sales}
}

func (r *InMemoryMetricsRepository) GetDashboardMetrics() (Metrics, error) {
	var m Metrics
	m.TotalProducts = len(r.products.products)
	m.TotalMovements = len(r.movements.movements)
	m.TotalSales = len(r.sales.sales)

	counts := map[int]int{}
	for _, p := range r.products.products {
		if p.LowStock() {
			m.LowStockCount++
		}
	}
	for _, mv := range r.movements.movements {
		counts[mv.ProductID]++
	}

	best := 0
	for productID, count := range counts {
		if count > best {
			best = count
			m.MostMovedProduct.MovementCount = count
			if p, err := r.products.GetByID(productID); err == nil {
				m.MostMovedProduct.Name = p.Name
			}
		}
	}
	return m, nil
}
