package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes behind auth. Reads need any
// known role, writes need the admin role.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	read := middleware.RequireRoles(models.RoleUser, models.RoleAdmin)
	write := middleware.RequireRoles(models.RoleAdmin)

	productRoutes := router.Group("/products", auth)
	productRoutes.Get("/", read, h.HandleGetProducts)
	productRoutes.Get("/search", read, h.HandleSearchByName)
	productRoutes.Get("/search/stock", read, h.HandleSearchByNameAndStock)
	productRoutes.Get("/price/min", read, h.HandlePriceAtLeast)
	productRoutes.Get("/price/range", read, h.HandlePriceRange)
	productRoutes.Get("/stock/max", read, h.HandleStockBelow)
	productRoutes.Get("/:id", read, h.HandleGetProductByID)
	productRoutes.Post("/", write, h.HandleCreateProduct)
	productRoutes.Put("/:id", write, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", write, h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product, or 404 with no body.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	product, found, err := h.service.GetProductByID(id)
	if err != nil {
		return err
	}
	if !found {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product on behalf of the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body: %v", err)
	}

	product, err := h.service.CreateProduct(req, middleware.Username(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	var req models.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body: %v", err)
	}

	product, err := h.service.UpdateProduct(id, req)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) HandleSearchByName(c *fiber.Ctx) error {
	name, err := queryString(c, "name")
	if err != nil {
		return err
	}
	return respond(c)(h.service.SearchProductsByName(name))
}

func (h *ProductHandler) HandleSearchByNameAndStock(c *fiber.Ctx) error {
	name, err := queryString(c, "name")
	if err != nil {
		return err
	}
	stock, err := queryInt(c, "stock")
	if err != nil {
		return err
	}
	return respond(c)(h.service.FindProductsByNameAndStockAbove(name, stock))
}

func (h *ProductHandler) HandlePriceAtLeast(c *fiber.Ctx) error {
	price, err := queryDecimal(c, "price")
	if err != nil {
		return err
	}
	return respond(c)(h.service.FindProductsByPriceAtLeast(price))
}

func (h *ProductHandler) HandleStockBelow(c *fiber.Ctx) error {
	stock, err := queryInt(c, "stock")
	if err != nil {
		return err
	}
	return respond(c)(h.service.FindProductsByStockBelow(stock))
}

func (h *ProductHandler) HandlePriceRange(c *fiber.Ctx) error {
	minPrice, err := queryDecimal(c, "minPrice")
	if err != nil {
		return err
	}
	maxPrice, err := queryDecimal(c, "maxPrice")
	if err != nil {
		return err
	}
	return respond(c)(h.service.FindProductsByPriceBetween(minPrice, maxPrice))
}

func respond(c *fiber.Ctx) func([]models.Product, error) error {
	return func(products []models.Product, err error) error {
		if err != nil {
			return err
		}
		return c.JSON(products)
	}
}

func productID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return 0, badRequest("Invalid product id: %s", raw)
	}
	return uint(id), nil
}

func queryString(c *fiber.Ctx, key string) (string, error) {
	if !c.Context().QueryArgs().Has(key) {
		return "", badRequest("Required parameter '%s' is missing", key)
	}
	return c.Query(key), nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw, err := queryString(c, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("Invalid value for parameter '%s': %s", key, raw)
	}
	return n, nil
}

func queryDecimal(c *fiber.Ctx, key string) (decimal.Decimal, error) {
	raw, err := queryString(c, key)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, badRequest("Invalid value for parameter '%s': %s", key, raw)
	}
	return d, nil
}
