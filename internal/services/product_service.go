package services

import (
	"vastra/internal/models"
	"vastra/internal/repositories"
)

// ProductService exposes the read side of the catalog: product details
// and the per-variant availability a storefront renders next to the
// size and colour pickers.
type ProductService struct {
	productRepo   repositories.ProductRepository
	inventoryRepo repositories.InventoryRepository
}

// NewProductService creates a new ProductService.
func NewProductService(productRepo repositories.ProductRepository, inventoryRepo repositories.InventoryRepository) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
	}
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// VariantAvailability is one stock counter for a product, keyed by the
// size and/or colour it tracks. An entry with both fields empty is the
// product-level counter.
type VariantAvailability struct {
	SizeCode  string `json:"size_code,omitempty"`
	ColorName string `json:"color_name,omitempty"`
	Available int    `json:"available"`
}

// Availability lists every stock counter held for a product. Counters
// reflect reservations already taken, not just completed sales.
func (s *ProductService) Availability(productID string) ([]VariantAvailability, error) {
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return nil, ErrProductNotFound
	}
	records, err := s.inventoryRepo.FindByProduct(productID)
	if err != nil {
		return nil, err
	}
	out := make([]VariantAvailability, 0, len(records))
	for _, rec := range records {
		out = append(out, VariantAvailability{
			SizeCode:  rec.SizeCode,
			ColorName: rec.ColorName,
			Available: rec.Stock,
		})
	}
	return out, nil
}

// CreateProduct registers a product along with its initial stock
// counters. Used by the admin seeding endpoint.
func (s *ProductService) CreateProduct(product *models.Product, counters []models.InventoryRecord) error {
	if err := s.productRepo.Create(product); err != nil {
		return err
	}
	for i := range counters {
		counters[i].ProductID = product.ID
		if err := s.inventoryRepo.Create(&counters[i]); err != nil {
			return err
		}
	}
	return nil
}
