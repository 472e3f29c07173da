package handlers

import (
	"errors"
	"fmt"

	"katalog/internal/metrics"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"
	"katalog/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// EventPublisher announces products that were stored.
type EventPublisher interface {
	PublishProductSaved(product *models.Product) error
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service   *services.ProductService
	validator *validation.Validator
	publisher EventPublisher
	metrics   *metrics.Metrics
	log       *zerolog.Logger
}

// NewProductHandler creates a new ProductHandler. publisher may be nil, in which
// case no events are sent.
func NewProductHandler(service *services.ProductService, publisher EventPublisher, m *metrics.Metrics, log *zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:   service,
		validator: validation.New(),
		publisher: publisher,
		metrics:   m,
		log:       log,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Post("/validate", h.HandleValidateProducts)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list products")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return h.lookupError(c, id, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct validates the request body and saves it as a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidBody(c, err)
	}
	// IDs are assigned by the store.
	product.ID = 0

	return h.validateAndSave(c, &product, fiber.StatusCreated)
}

// HandleUpdateProduct replaces an existing product with the request body.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	if _, err := h.service.GetProductByID(c.UserContext(), id); err != nil {
		return h.lookupError(c, id, err)
	}

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidBody(c, err)
	}
	product.ID = id

	return h.validateAndSave(c, &product, fiber.StatusOK)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return h.lookupError(c, id, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %d deleted successfully", id),
	})
}

// ValidationResult is one entry of the /products/validate response.
type ValidationResult struct {
	Index  int               `json:"index"`
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// HandleValidateProducts validates a JSON array of records without storing any of them.
func (h *ProductHandler) HandleValidateProducts(c *fiber.Ctx) error {
	var products []models.Product
	if err := c.BodyParser(&products); err != nil {
		return invalidBody(c, err)
	}

	report := h.validator.ValidateAll(products)
	results := make([]ValidationResult, len(report.Results))
	for i, res := range report.Results {
		h.metrics.ObserveValidation(res.Violations)
		results[i] = ValidationResult{
			Index:  res.Index,
			Valid:  res.Violations.Valid(),
			Errors: res.Violations.Messages(),
		}
	}

	return c.JSON(fiber.Map{
		"valid":   report.Valid(),
		"results": results,
	})
}

func (h *ProductHandler) validateAndSave(c *fiber.Ctx, product *models.Product, status int) error {
	violations := h.validator.Validate(product)
	h.metrics.ObserveValidation(violations)
	if !violations.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  violations.Messages(),
		})
	}

	saved, err := h.service.Save(c.UserContext(), product)
	if err != nil {
		h.metrics.SaveFailures.Inc()
		h.log.Error().Err(err).Msg("failed to save product")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not save product",
			"error":   err.Error(),
		})
	}
	h.metrics.ProductsSaved.Inc()

	if h.publisher != nil {
		if err := h.publisher.PublishProductSaved(saved); err != nil {
			// The product is stored; a lost event does not fail the request.
			h.log.Warn().Err(err).Int64("product_id", saved.ID).Msg("failed to publish product event")
		}
	}

	return c.Status(status).JSON(saved)
}

func (h *ProductHandler) lookupError(c *fiber.Ctx, id int64, err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d not found", id),
		})
	}
	h.log.Error().Err(err).Int64("product_id", id).Msg("product lookup failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not retrieve product",
		"error":   err.Error(),
	})
}

func productID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "product ID must be a positive integer")
	}
	return int64(id), nil
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
