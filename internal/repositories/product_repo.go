package repositories

import (
	"vastra/internal/models"
)

// ProductRepository defines the catalog access the order engine needs to
// snapshot prices at creation time, plus the create used by admin seeding.
// Full catalog management (search, media, merchandising) lives elsewhere.
type ProductRepository interface {
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
}
