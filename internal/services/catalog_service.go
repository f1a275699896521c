package services

import (
	"fmt"

	"ayuta/internal/models"
	"ayuta/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// CatalogService handles business logic related to the kit catalog.
type CatalogService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ProductRepository) *CatalogService {
	return &CatalogService{
		repo:     repo,
		validate: validator.New(),
	}
}

// GetAllProducts retrieves the catalog ordered by category, then name.
func (s *CatalogService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *CatalogService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct validates a product and adds it to the catalog.
func (s *CatalogService) CreateProduct(product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("invalid product %q: %w", product.ID, err)
	}
	for _, g := range product.Goals {
		if goal := models.Goal(g); goal == models.GoalAll || !goal.Valid() {
			return fmt.Errorf("invalid product %q: unknown goal tag %q", product.ID, g)
		}
	}
	return s.repo.Create(product)
}

// Seed creates every product not already in the catalog.
func (s *CatalogService) Seed(products []models.Product) (int, error) {
	created := 0
	for i := range products {
		if _, err := s.repo.GetByID(products[i].ID); err == nil {
			continue
		}
		p := products[i]
		if err := s.CreateProduct(&p); err != nil {
			return created, fmt.Errorf("failed to seed catalog: %w", err)
		}
		created++
	}
	return created, nil
}

// DefaultCatalog is the kit range offered by the demo shop.
func DefaultCatalog() []models.Product {
	return []models.Product{
		{ID: "essential-health", Name: "Essential Health Check", Category: "Core panels", Price: 89, Goals: []string{"wellness"}},
		{ID: "advanced-wellness", Name: "Advanced Wellness", Category: "Core panels", Price: 149, Goals: []string{"wellness", "energy"}},
		{ID: "metabolic-panel", Name: "Metabolic Panel", Category: "Focused panels", Price: 79, Goals: []string{"metabolic"}},
		{ID: "energy-check", Name: "Energy Check", Category: "Focused panels", Price: 59, Goals: []string{"energy", "wellness"}},
		{ID: "performance-pro", Name: "Performance Pro", Category: "Focused panels", Price: 129, Goals: []string{"performance", "metabolic"}},
		{ID: "vitamin-d", Name: "Vitamin D", Category: "Add-ons", Price: 29, Goals: []string{"wellness", "energy"}},
		{ID: "hba1c", Name: "HbA1c", Category: "Add-ons", Price: 35, Goals: []string{"metabolic"}},
		{ID: "cortisol", Name: "Cortisol", Category: "Add-ons", Price: 39, Goals: []string{"energy", "performance"}},
	}
}
