package repo

import (
	"github.com/stockmanager/backend/internal/models"
)

// InMemorySupplierRepository is an in-memory implementation of SupplierRepository.
type InMemorySupplierRepository struct {
	suppliers []models.Supplier
	nextID    int
}

func NewInMemorySupplierRepository() *InMemorySupplierRepository {
	return &InMemorySupplierRepository{
		suppliers: []models.Supplier{},
		nextID:    1,
	}
}

func (r *InMemorySupplierRepository) Create(supplier models.Supplier) (models.Supplier, error) {
	supplier.ID = r.nextID
	r.nextID++
	r.suppliers = append(r.suppliers, supplier)
	return supplier, nil
}

func (r *InMemorySupplierRepository) GetAll() ([]models.Supplier, error) {
	return r.suppliers, nil
}

func (r *InMemorySupplierRepository) GetByID(id int) (models.Supplier, error) {
	for _, s := range r.suppliers {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Supplier{}, ErrSupplierNotFound
}

func (r *InMemorySupplierRepository) Update(supplier models.Supplier) (models.Supplier, error) {
	for i, s := range r.suppliers {
		if s.ID == supplier.ID {
			r.suppliers[i] = supplier
			return supplier, nil
		}
	}
	return models.Supplier{}, ErrSupplierNotFound
}

func (r *InMemorySupplierRepository) Delete(id int) error {
	for i, s := range r.suppliers {
		if s.ID == id {
			r.suppliers = append(r.suppliers[:i], r.suppliers[i+1:]...)
			return nil
		}
	}
	return ErrSupplierNotFound
}

func (r *InMemorySupplierRepository) Exists(id int) (bool, error) {
	for _, s := range r.suppliers {
		if s.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemorySupplierRepository) Clear() {
	r.suppliers = []models.Supplier{}
	r.nextID = 1
}
