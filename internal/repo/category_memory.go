package repo

import (
	"github.com/stockmanager/backend/internal/models"
)

type InMemoryCategoryRepository struct {
	categories []models.Category
	nextID     int
}

func NewInMemoryCategoryRepository() *InMemoryCategoryRepository {
	return &InMemoryCategoryRepository{
		categories: []models.Category{},
		nextID:     1,
	}
}

func (r *InMemoryCategoryRepository) Add(c models.Category) models.Category {
	c.ID = r.nextID
	r.nextID++
	r.categories = append(r.categories, c)
	return c
}

func (r *InMemoryCategoryRepository) GetAll() ([]models.Category, error) {
	return r.categories, nil
}

func (r *InMemoryCategoryRepository) Clear() {
	r.categories = []models.Category{}
	r.nextID = 1
}
