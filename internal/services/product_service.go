package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/validation"
)

// AuditPublisher receives product creation events. Delivery is best effort.
type AuditPublisher interface {
	PublishProductCreated(event models.ProductCreatedEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo  repositories.ProductRepository
	audit AuditPublisher
	now   func() time.Time
}

// NewProductService creates a new ProductService. audit may be nil.
func NewProductService(repo repositories.ProductRepository, audit AuditPublisher) *ProductService {
	return &ProductService{
		repo:  repo,
		audit: audit,
		now:   time.Now,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID. A missing product is
// reported with found == false and a nil error.
func (s *ProductService) GetProductByID(id uint) (product *models.Product, found bool, err error) {
	product, err = s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return product, true, nil
}

// CreateProduct validates req and stores it as a new product. The actor is
// recorded in the audit trail once the product is committed.
func (s *ProductService) CreateProduct(req models.ProductRequest, actor string) (*models.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	product := &models.Product{}
	req.ApplyTo(product)
	err := s.repo.WithTx(func(repo repositories.ProductRepository) error {
		return repo.Create(product)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publishCreated(product, actor)
	return product, nil
}

// UpdateProduct replaces every field but the ID of product id. The payload
// is validated before the product is looked up, so an invalid payload for a
// missing product yields a *ValidationError.
func (s *ProductService) UpdateProduct(id uint, req models.ProductRequest) (*models.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var updated *models.Product
	err := s.repo.WithTx(func(repo repositories.ProductRepository) error {
		product, err := repo.GetByID(id)
		if err != nil {
			if errors.Is(err, repositories.ErrProductNotFound) {
				return &NotFoundError{ID: id}
			}
			return err
		}
		req.ApplyTo(product)
		if err := repo.Update(product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return updated, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id uint) error {
	err := s.repo.WithTx(func(repo repositories.ProductRepository) error {
		exists, err := repo.ExistsByID(id)
		if err != nil {
			return err
		}
		if !exists {
			return &NotFoundError{ID: id}
		}
		return repo.Delete(id)
	})
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nf
		}
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

// SearchProductsByName returns products whose name contains name, ignoring case.
func (s *ProductService) SearchProductsByName(name string) ([]models.Product, error) {
	return s.repo.SearchByName(name)
}

// FindProductsByPriceAtLeast returns products priced at or above price.
func (s *ProductService) FindProductsByPriceAtLeast(price decimal.Decimal) ([]models.Product, error) {
	return s.repo.FindByPriceAtLeast(price)
}

// FindProductsByStockBelow returns products with fewer than stock units.
func (s *ProductService) FindProductsByStockBelow(stock int) ([]models.Product, error) {
	return s.repo.FindByStockBelow(stock)
}

// FindProductsByPriceBetween returns products priced within [minPrice, maxPrice].
func (s *ProductService) FindProductsByPriceBetween(minPrice, maxPrice decimal.Decimal) ([]models.Product, error) {
	return s.repo.FindByPriceBetween(minPrice, maxPrice)
}

// FindProductsByNameAndStockAbove returns products whose name contains name,
// ignoring case, with more than stock units.
func (s *ProductService) FindProductsByNameAndStockAbove(name string, stock int) ([]models.Product, error) {
	return s.repo.FindByNameAndStockAbove(name, stock)
}

func (s *ProductService) publishCreated(product *models.Product, actor string) {
	if s.audit == nil {
		logger.Debug("audit publisher is not configured, skipping product created event", logger.Fields{"product_id": product.ID})
		return
	}
	event := models.ProductCreatedEvent{
		ProductID:  product.ID,
		Name:       product.Name,
		Username:   actor,
		OccurredAt: s.now().UTC(),
	}
	if err := s.audit.PublishProductCreated(event); err != nil {
		logger.Warn("failed to publish product created event", logger.Fields{
			"product_id": product.ID,
			"error":      err.Error(),
		})
	}
}

func validate(req models.ProductRequest) error {
	if violations := validation.ValidateProduct(req); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
