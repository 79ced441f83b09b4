package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockmanager/backend/internal/models"
	"github.com/stockmanager/backend/internal/repo"
)

type fixture struct {
	service   *Service
	products  *repo.InMemoryProductRepository
	suppliers *repo.InMemorySupplierRepository
	movements *repo.InMemoryMovementRepository
	sales     *repo.InMemorySaleRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := repo.NewInMemoryProductRepository()
	suppliers := repo.NewInMemorySupplierRepository()
	movements := repo.NewInMemoryMovementRepository()
	sales := repo.NewInMemorySaleRepository()
	store := repo.NewInMemoryLedgerStore(products, movements, sales)
	return &fixture{
		service:   NewService(store, products, suppliers),
		products:  products,
		suppliers: suppliers,
		movements: movements,
		sales:     sales,
	}
}

func (f *fixture) addProduct(t *testing.T, quantity int, price string, supplierID *int) models.Product {
	t.Helper()
	p, err := f.products.Create(models.Product{
		Name:       "Widget",
		Quantity:   quantity,
		Price:      decimal.RequireFromString(price),
		Threshold:  2,
		SupplierID: supplierID,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) addSupplier(t *testing.T, name string) models.Supplier {
	t.Helper()
	s, err := f.suppliers.Create(models.Supplier{Name: name})
	require.NoError(t, err)
	return s
}

func TestRecordMovementDeltaSigns(t *testing.T) {
	tests := []struct {
		name         string
		movementType string
		quantity     int
		wantDelta    int
		wantQuantity int
	}{
		{"in increments", models.MovementTypeIn, 5, 5, 15},
		{"out decrements", models.MovementTypeOut, 3, -3, 7},
		{"adjust decrements", models.MovementTypeAdjust, 4, -4, 6},
		{"sale decrements", models.MovementTypeSale, 2, -2, 8},
		{"lowercase type accepted", "in", 5, 5, 15},
		{"padded type accepted", " out ", 3, -3, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			supplier := f.addSupplier(t, "Acme")
			product := f.addProduct(t, 10, "2.50", nil)

			result, err := f.service.RecordMovement(context.Background(), MovementInput{
				ProductID:  product.ID,
				UserID:     1,
				Type:       tt.movementType,
				Quantity:   tt.quantity,
				SupplierID: &supplier.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantDelta, result.Movement.Delta)
			assert.Equal(t, tt.wantQuantity, result.NewQuantity)

			got, err := f.products.GetByID(product.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuantity, got.Quantity)
		})
	}
}

func TestRecordMovementIgnoresClientSign(t *testing.T) {
	// The sign on the quantity is discarded, never trusted: a negative
	// quantity on an OUT still decrements, and on an IN still increments.
	f := newFixture(t)
	supplier := f.addSupplier(t, "Acme")
	product := f.addProduct(t, 10, "2.50", nil)

	result, err := f.service.RecordMovement(context.Background(), MovementInput{
		ProductID: product.ID,
		UserID:    1,
		Type:      models.MovementTypeOut,
		Quantity:  -3,
	})
	require.NoError(t, err)
	assert.Equal(t, -3, result.Movement.Delta)
	assert.Equal(t, 7, result.NewQuantity)

	result, err = f.service.RecordMovement(context.Background(), MovementInput{
		ProductID:  product.ID,
		UserID:     1,
		Type:       models.MovementTypeIn,
		Quantity:   -5,
		SupplierID: &supplier.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Movement.Delta)
	assert.Equal(t, 12, result.NewQuantity)
}

func TestRecordMovementValidation(t *testing.T) {
	f := newFixture(t)
	product := f.addProduct(t, 10, "2.50", nil)

	t.Run("zero quantity", func(t *testing.T) {
		_, err := f.service.RecordMovement(context.Background(), MovementInput{
			ProductID: product.ID, UserID: 1, Type: models.MovementTypeOut, Quantity: 0,
		})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := f.service.RecordMovement(context.Background(), MovementInput{
			ProductID: product.ID, UserID: 1, Type: "TRANSFER", Quantity: 1,
		})
		assert.ErrorIs(t, err, ErrInvalidMovementType)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := f.service.RecordMovement(context.Background(), MovementInput{
			ProductID: 999, UserID: 1, Type: models.MovementTypeOut, Quantity: 1,
		})
		assert.ErrorIs(t, err, repo.ErrProductNotFound)
	})
}

func TestRecordMovementInsufficientStock(t *testing.T) {
	f := newFixture(t)
	product := f.addProduct(t, 3, "2.50", nil)

	_, err := f.service.RecordMovement(context.Background(), MovementInput{
		ProductID: product.ID, UserID: 1, Type: models.MovementTypeOut, Quantity: 5,
	})
	assert.ErrorIs(t, err, repo.ErrInvalidQuantityChange)

	// The rejected movement must leave no trace.
	got, err := f.products.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	_, total, err := f.movements.GetAll(repo.MovementFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRecordMovementSupplierResolution(t *testing.T) {
	t.Run("bound product pins its supplier", func(t *testing.T) {
		f := newFixture(t)
		bound := f.addSupplier(t, "Bound")
		product := f.addProduct(t, 10, "2.50", &bound.ID)

		result, err := f.service.RecordMovement(context.Background(), MovementInput{
			ProductID: product.ID, UserID: 1, Type: models.MovementTypeIn, Quantity: 1,
		})
		require.NoError(t, err)
		require.NotNil(t, result.Movement.SupplierID)
		assert.Equal(t, bound.ID, *result.Movement.SupplierID)
	})

	t.Run("bound product rejects a different supplier", func(t *testing.T) {
		f := newFixture(t)
		bound := f.addSupplier(t, "Bound")
		other := f.addSupplier(t, "Other")
		product := f.addProduct(t, 10, "2.50", &bound.ID)

		_, err := f.service.RecordMovement(context.Background(), MovementInput{
			ProductID: product.ID, UserID: 1, Type: models.MovementTypeIn, Quantity: 1,
			SupplierID: &other.ID,
		})
		assert.ErrorIs(t, err, ErrSupplierMismatch)
	})

	t.Run("bound product accepts its own supplier restated", func(t *testing.T) {
		f := newFixture(t)
		bound := f.addSupplier(t, "Bound")
		product := f.addProduct(t, 10, "2.50", &bound.ID)

		_, err := f.service.RecordMovement(context.Background(), MovementInput{
			ProductID: product.ID, UserID: 1, Type: models.MovementTypeIn, Quantity: 1,
			SupplierID: &bound.ID,
		})
		assert.NoError(t, err)
	})

	t.Run("bound supplier deleted since", func(t *testing.T) {
		f := newFixture(t)
		bound := f.addSupplier(t, "Bound")
		product := f.addProduct(t, 10, "2.50", &bound.ID)
		require.NoError(t, f.suppliers.Delete(bound.ID))

		_, err := f.service.RecordMovement(context.Background(), MovementInput{
			ProductID: product.ID, UserID: 1, Type: models.MovementTypeIn, Quantity: 1,
		})
		assert.ErrorIs(t, err, repo.ErrSupplierNotFound)
	})

	t.Run("incoming stock requires a supplier", func(t *testing.T) {
		f := newFixture(t)
		product := f.addProduct(t, 10, "2.50", nil)

		_, err := f.service.RecordMovement(context.Background(), MovementInput{
			ProductID: product.ID, UserID: 1, Type: models.MovementTypeIn, Quantity: 1,
		})
		assert.ErrorIs(t, err, ErrSupplierRequired)
	})

	t.Run("incoming stock rejects an unknown supplier", func(t *testing.T) {
		f := newFixture(t)
		product := f.addProduct(t, 10, "2.50", nil)
		unknown := 42

		_, err := f.service.RecordMovement(context.Background(), MovementInput{
			ProductID: product.ID, UserID: 1, Type: models.MovementTypeIn, Quantity: 1,
			SupplierID: &unknown,
		})
		assert.ErrorIs(t, err, repo.ErrSupplierNotFound)
	})

	t.Run("outgoing stock supplier is optional", func(t *testing.T) {
		f := newFixture(t)
		product := f.addProduct(t, 10, "2.50", nil)

		result, err := f.service.RecordMovement(context.Background(), MovementInput{
			ProductID: product.ID, UserID: 1, Type: models.MovementTypeOut, Quantity: 1,
		})
		require.NoError(t, err)
		assert.Nil(t, result.Movement.SupplierID)
	})
}

func TestRecordSale(t *testing.T) {
	f := newFixture(t)
	product := f.addProduct(t, 10, "2.50", nil)

	result, err := f.service.RecordSale(context.Background(), SaleInput{
		ProductID: product.ID,
		UserID:    7,
		Quantity:  4,
	})
	require.NoError(t, err)

	assert.Equal(t, "10", result.Sale.TotalPrice.String())
	assert.Equal(t, "2.5", result.UnitPrice.String())
	assert.Equal(t, models.MovementTypeSale, result.Movement.Type)
	assert.Equal(t, -4, result.Movement.Delta)
	assert.Equal(t, "customer sale", result.Movement.Reason)
	assert.Nil(t, result.Movement.SupplierID)

	got, err := f.products.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Quantity)
}

func TestRecordSaleNormalizesSign(t *testing.T) {
	f := newFixture(t)
	product := f.addProduct(t, 10, "2.50", nil)

	result, err := f.service.RecordSale(context.Background(), SaleInput{
		ProductID: product.ID,
		UserID:    7,
		Quantity:  -4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Sale.Quantity)
	assert.Equal(t, -4, result.Movement.Delta)

	got, err := f.products.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Quantity)
}

func TestRecordSaleMissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.RecordSale(context.Background(), SaleInput{ProductID: 1})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = f.service.RecordSale(context.Background(), SaleInput{Quantity: 2})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestRecordSaleInsufficientStockIsAtomic(t *testing.T) {
	f := newFixture(t)
	product := f.addProduct(t, 3, "2.50", nil)

	_, err := f.service.RecordSale(context.Background(), SaleInput{
		ProductID: product.ID, UserID: 1, Quantity: 5,
	})
	assert.ErrorIs(t, err, repo.ErrInvalidQuantityChange)

	sales, err := f.sales.GetAll()
	require.NoError(t, err)
	assert.Empty(t, sales)

	_, total, err := f.movements.GetAll(repo.MovementFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	got, err := f.products.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	// Stock of 5, two concurrent sales of 4. Exactly one must win.
	f := newFixture(t)
	product := f.addProduct(t, 5, "1.00", nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.RecordSale(context.Background(), SaleInput{
				ProductID: product.ID, UserID: 1, Quantity: 4,
			})
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, repo.ErrInvalidQuantityChange)
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	got, err := f.products.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)

	sales, err := f.sales.GetAll()
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

type recordingNotifier struct {
	products []models.Product
}

func (n *recordingNotifier) NotifyLowStock(p models.Product) {
	n.products = append(n.products, p)
}

func TestLowStockNotification(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{}
	f.service.WithNotifier(notifier)
	product := f.addProduct(t, 5, "2.50", nil) // threshold 2

	_, err := f.service.RecordMovement(context.Background(), MovementInput{
		ProductID: product.ID, UserID: 1, Type: models.MovementTypeOut, Quantity: 4,
	})
	require.NoError(t, err)

	require.Len(t, notifier.products, 1)
	assert.Equal(t, product.ID, notifier.products[0].ID)
	assert.Equal(t, 1, notifier.products[0].Quantity)
}
