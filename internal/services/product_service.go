package services

import (
	"context"

	"katalog/internal/models"
	"katalog/internal/repositories"
)

// ProductService is the entry point for persisting catalog products.
//
// Save does not validate. Callers run validation.Validate first and only save
// records that report no violations.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// Save forwards product to the repository and returns its result unchanged,
// including any error.
func (s *ProductService) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	return s.repo.Save(ctx, product)
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
