package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockmanager/backend/internal/models"
	"github.com/stockmanager/backend/internal/repo"
)

// CreateProductHandler godoc
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param product body ProductRequest true "product to create"
// @Success 201 {object} models.Product
// @Failure 400 {string} string "Invalid input"
// @Router /products [post]
// @Security BearerAuth
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.Quantity < 0 {
		http.Error(w, "quantity cannot be negative", http.StatusBadRequest)
		return
	}
	if req.Price.IsNegative() {
		http.Error(w, "price cannot be negative", http.StatusBadRequest)
		return
	}

	if req.SupplierID != nil {
		exists, err := supplierRepo.Exists(*req.SupplierID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !exists {
			http.Error(w, "supplier not found", http.StatusNotFound)
			return
		}
	}

	product, err := productRepo.Create(models.Product{
		Name:       req.Name,
		Quantity:   req.Quantity,
		Price:      req.Price,
		MinStock:   req.MinStock,
		MaxStock:   req.MaxStock,
		Threshold:  req.Threshold,
		CategoryID: req.CategoryID,
		SupplierID: req.SupplierID,
	})
	if err != nil {
		http.Error(w, "failed to create product", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// GetProductsHandler godoc
// @Summary List all products
// @Tags products
// @Produce json
// @Success 200 {array} models.Product
// @Router /products [get]
// @Security BearerAuth
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := productRepo.GetAll()
	if err != nil {
		http.Error(w, "failed to list products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProductByIDHandler godoc
// @Summary Get a product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Product
// @Failure 404 {string} string "Not found"
// @Router /products/{id} [get]
// @Security BearerAuth
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "fields to update"
// @Success 200 {object} models.Product
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Not found"
// @Router /products/{id} [put]
// @Security BearerAuth
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	existing, err := productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Price.IsNegative() {
		http.Error(w, "price cannot be negative", http.StatusBadRequest)
		return
	}
	if !req.Price.IsZero() {
		existing.Price = req.Price
	}
	existing.MinStock = req.MinStock
	existing.MaxStock = req.MaxStock
	existing.Threshold = req.Threshold
	if req.CategoryID != nil {
		existing.CategoryID = req.CategoryID
	}
	if req.SupplierID != nil {
		exists, err := supplierRepo.Exists(*req.SupplierID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !exists {
			http.Error(w, "supplier not found", http.StatusNotFound)
			return
		}
		existing.SupplierID = req.SupplierID
	}

	product, err := productRepo.Update(existing)
	if err != nil {
		http.Error(w, "failed to update product", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Tags products
// @Param id path int true "Product ID"
// @Success 204
// @Failure 404 {string} string "Not found"
// @Router /products/{id} [delete]
// @Security BearerAuth
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	if err := productRepo.Delete(id); err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete product", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetLowStockProductsHandler godoc
// @Summary List products below their alert threshold
// @Tags products
// @Produce json
// @Success 200 {array} models.Product
// @Router /products/low-stock [get]
// @Security BearerAuth
func GetLowStockProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := productRepo.LowStock()
	if err != nil {
		http.Error(w, "failed to list low stock products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}
