package repositories

import (
	"context"
	"errors"

	"katalog/internal/models"
)

// ErrProductNotFound is returned when no product has the requested ID.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
//
// Save stores a product and returns the stored value. A zero ID asks the store
// to assign one; a non-zero ID replaces the stored record. Implementations do
// not modify the product passed in.
type ProductRepository interface {
	Save(ctx context.Context, product *models.Product) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}
