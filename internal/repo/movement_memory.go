package repo

import (
	"github.com/stockmanager/backend/internal/models"
)

type InMemoryMovementRepository struct {
	movements []models.Movement
	nextID    int
}

func NewInMemoryMovementRepository() *InMemoryMovementRepository {
	return &InMemoryMovementRepository{
		movements: []models.Movement{},
		nextID:    1,
	}
}

// add appends a movement and assigns its ID. Only the ledger store
// calls this.
func (r *InMemoryMovementRepository) add(m models.Movement) models.Movement {
	m.ID = r.nextID
	r.nextID++
	r.movements = append(r.movements, m)
	return m
}

// GetAll returns the movement history, optionally filtered by date range
// and paginated, newest first.
func (r *InMemoryMovementRepository) GetAll(mf MovementFilter) ([]models.Movement, int, error) {
	return r.filter(0, mf)
}

// GetByProductID returns all movements for a specific product.
func (r *InMemoryMovementRepository) GetByProductID(productID int, mf MovementFilter) ([]models.Movement, int, error) {
	return r.filter(productID, mf)
}

func (r *InMemoryMovementRepository) filter(productID int, mf MovementFilter) ([]models.Movement, int, error) {
	var filtered []models.Movement
	for i := len(r.movements) - 1; i >= 0; i-- {
		m := r.movements[i]
		if productID != 0 && m.ProductID != productID {
			continue
		}
		if mf.Since != nil && m.CreatedAt.Before(*mf.Since) {
			continue
		}
		if mf.Until != nil && m.CreatedAt.After(*mf.Until) {
			continue
		}
		filtered = append(filtered, m)
	}

	if mf.Limit != nil && *mf.Limit == 0 {
		return []models.Movement{}, len(filtered), nil
	}
	if mf.Offset != nil && *mf.Offset > len(filtered) {
		return []models.Movement{}, len(filtered), nil
	}

	start := 0
	if mf.Offset != nil {
		start = clamp(*mf.Offset, 0, len(filtered))
	}

	end := len(filtered)
	if mf.Limit != nil && *mf.Limit > 0 {
		end = clamp(start+*mf.Limit, start, len(filtered))
	}

	return filtered[start:end], len(filtered), nil
}

func (r *InMemoryMovementRepository) Clear() {
	r.movements = []models.Movement{}
	r.nextID = 1
}
