package handlers

import (
	"vastra/internal/models"
	"vastra/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler serves the catalog read side and admin seeding.
type ProductHandler struct {
	productService *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// RegisterRoutes registers the catalog read routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Get("/:id/availability", h.HandleAvailability)
}

// RegisterAdminRoutes registers the catalog admin routes.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Post("/products", h.HandleCreateProduct)
}

// HandleGetProduct returns a single product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.productService.GetProduct(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleAvailability lists the stock counters for a product.
func (h *ProductHandler) HandleAvailability(c *fiber.Ctx) error {
	counters, err := h.productService.Availability(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"product_id": c.Params("id"),
		"counters":   counters,
	})
}

type createProductRequest struct {
	Product  models.Product           `json:"product"`
	Counters []models.InventoryRecord `json:"counters"`
}

// HandleCreateProduct registers a product and its initial stock counters.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Cannot parse JSON",
		})
	}
	if req.Product.Name == "" || req.Product.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product name and a positive price are required",
		})
	}

	if err := h.productService.CreateProduct(&req.Product, req.Counters); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req.Product)
}
