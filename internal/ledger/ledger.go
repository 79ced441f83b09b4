// Package ledger is the single write path for stock. Every quantity
// change, whether a warehouse movement or a customer sale, goes through
// Service so the negative-stock guard and the movement log can never be
// bypassed.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/stockmanager/backend/internal/models"
	"github.com/stockmanager/backend/internal/repo"
)

var (
	ErrInvalidMovementType = errors.New("invalid movement type")
	ErrInvalidQuantity     = errors.New("quantity must be a positive number")
	ErrMissingFields       = errors.New("missing required fields")
	ErrSupplierRequired    = errors.New("a supplier is required for incoming stock")
	ErrSupplierMismatch    = errors.New("provided supplier does not match the product supplier")
)

// LowStockNotifier is told about products that dropped below their
// alert threshold after a committed stock change.
type LowStockNotifier interface {
	NotifyLowStock(product models.Product)
}

// CacheInvalidator drops cached product entries after stock changes.
type CacheInvalidator interface {
	Invalidate(productID int)
}

// MovementInput is a request to change stock for one product. Quantity
// is a magnitude; a client-supplied sign is discarded and the direction
// is derived from Type alone.
type MovementInput struct {
	ProductID  int
	UserID     int
	Type       string
	Quantity   int
	Reason     string
	SupplierID *int
}

type MovementResult struct {
	Movement    models.Movement `json:"movement"`
	NewQuantity int             `json:"new_quantity"`
	Message     string          `json:"message"`
}

// SaleInput is a request to sell stock. The total price is computed
// from the product's current unit price inside the transaction.
type SaleInput struct {
	ProductID int
	UserID    int
	Quantity  int
	Date      *time.Time
}

type SaleResult struct {
	Sale      models.Sale     `json:"sale"`
	Movement  models.Movement `json:"movement"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Message   string          `json:"message"`
}

// Service validates and applies stock changes through a LedgerStore.
type Service struct {
	store     repo.LedgerStore
	products  repo.ProductRepository
	suppliers repo.SupplierRepository
	notifier  LowStockNotifier
	cache     CacheInvalidator
}

func NewService(store repo.LedgerStore, products repo.ProductRepository, suppliers repo.SupplierRepository) *Service {
	return &Service{store: store, products: products, suppliers: suppliers}
}

// WithNotifier registers a low-stock notifier. Optional.
func (s *Service) WithNotifier(n LowStockNotifier) *Service {
	s.notifier = n
	return s
}

// WithCache registers a product cache to invalidate on writes. Optional.
func (s *Service) WithCache(c CacheInvalidator) *Service {
	s.cache = c
	return s
}

// RecordMovement applies an IN, OUT, ADJUST or SALE movement. IN
// increments stock, the other types decrement it. The change and its
// movement row commit atomically, and a change that would drive stock
// negative is rejected with repo.ErrInvalidQuantityChange.
func (s *Service) RecordMovement(ctx context.Context, in MovementInput) (MovementResult, error) {
	movementType := strings.ToUpper(strings.TrimSpace(in.Type))

	delta, err := deriveDelta(movementType, in.Quantity)
	if err != nil {
		return MovementResult{}, err
	}

	product, err := s.products.GetByID(in.ProductID)
	if err != nil {
		return MovementResult{}, err
	}

	supplierID, err := s.resolveSupplier(product, movementType, in.SupplierID)
	if err != nil {
		return MovementResult{}, err
	}

	movement := models.Movement{
		ProductID:  in.ProductID,
		UserID:     in.UserID,
		Type:       movementType,
		Delta:      delta,
		Reason:     in.Reason,
		SupplierID: supplierID,
	}

	movement, err = s.store.ApplyMovement(ctx, movement)
	if err != nil {
		return MovementResult{}, err
	}

	newQuantity := s.afterWrite(in.ProductID)

	log.Info().
		Int("product_id", in.ProductID).
		Str("type", movementType).
		Int("delta", delta).
		Int("user_id", in.UserID).
		Msg("stock movement recorded")

	return MovementResult{
		Movement:    movement,
		NewQuantity: newQuantity,
		Message:     "Stock movement recorded",
	}, nil
}

// RecordSale sells stock at the product's current unit price. The sale
// row, its SALE movement and the stock decrement commit in a single
// transaction, so an insufficient-stock rejection leaves no partial
// records behind.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (SaleResult, error) {
	// A sign on the quantity is noise from the client; only the
	// magnitude counts.
	if in.Quantity < 0 {
		in.Quantity = -in.Quantity
	}
	if in.ProductID == 0 || in.Quantity == 0 {
		return SaleResult{}, ErrMissingFields
	}

	saleDate := time.Now()
	if in.Date != nil {
		saleDate = *in.Date
	}

	userID := in.UserID
	sale := models.Sale{
		ProductID: in.ProductID,
		UserID:    &userID,
		Quantity:  in.Quantity,
		Date:      saleDate,
	}
	movement := models.Movement{
		ProductID: in.ProductID,
		UserID:    in.UserID,
		Type:      models.MovementTypeSale,
		Delta:     -in.Quantity,
		Reason:    "customer sale",
	}

	outcome, err := s.store.ApplySale(ctx, sale, movement)
	if err != nil {
		return SaleResult{}, err
	}

	s.afterWrite(in.ProductID)

	log.Info().
		Int("product_id", in.ProductID).
		Int("quantity", in.Quantity).
		Int("user_id", in.UserID).
		Str("total_price", outcome.Sale.TotalPrice.String()).
		Msg("sale recorded")

	return SaleResult{
		Sale:      outcome.Sale,
		Movement:  outcome.Movement,
		UnitPrice: outcome.UnitPrice,
		Message:   "Sale recorded",
	}, nil
}

// deriveDelta turns a movement type plus magnitude into a signed delta.
// The quantity's own sign is discarded. ADJUST is a write-off and
// always decrements; SALE movements recorded directly decrement too.
func deriveDelta(movementType string, quantity int) (int, error) {
	if quantity < 0 {
		quantity = -quantity
	}
	if quantity == 0 {
		return 0, ErrInvalidQuantity
	}
	switch movementType {
	case models.MovementTypeIn:
		return quantity, nil
	case models.MovementTypeOut, models.MovementTypeAdjust, models.MovementTypeSale:
		return -quantity, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMovementType, movementType)
	}
}

// resolveSupplier decides which supplier, if any, a movement is
// attributed to. A product bound to a supplier pins every movement to
// it. An unbound product requires a supplier for incoming stock and
// accepts an optional one otherwise.
func (s *Service) resolveSupplier(product models.Product, movementType string, supplied *int) (*int, error) {
	if product.SupplierID != nil {
		if supplied != nil && *supplied != *product.SupplierID {
			return nil, ErrSupplierMismatch
		}
		exists, err := s.suppliers.Exists(*product.SupplierID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, repo.ErrSupplierNotFound
		}
		return product.SupplierID, nil
	}

	if supplied == nil {
		if movementType == models.MovementTypeIn {
			return nil, ErrSupplierRequired
		}
		return nil, nil
	}

	exists, err := s.suppliers.Exists(*supplied)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repo.ErrSupplierNotFound
	}
	return supplied, nil
}

// afterWrite invalidates the cache entry and fires the low-stock
// notifier when the product dropped below its threshold. Returns the
// quantity after the write, or -1 when the re-read fails.
func (s *Service) afterWrite(productID int) int {
	if s.cache != nil {
		s.cache.Invalidate(productID)
	}

	product, err := s.products.GetByID(productID)
	if err != nil {
		log.Warn().Err(err).Int("product_id", productID).Msg("failed to re-read product after stock change")
		return -1
	}
	if product.LowStock() {
		log.Warn().
			Int("product_id", product.ID).
			Str("name", product.Name).
			Int("quantity", product.Quantity).
			Int("threshold", product.Threshold).
			Msg("product below low stock threshold")
		if s.notifier != nil {
			s.notifier.NotifyLowStock(product)
		}
	}
	return product.Quantity
}
