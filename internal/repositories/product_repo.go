package repositories

import (
	"ayuta/internal/models"
)

// ProductRepository defines the interface for catalog data access.
// GetAll returns products ordered by category, then name.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
}
