package repositories

import (
	"errors"

	"github.com/shopspring/decimal"

	"catalog/internal/models"
)

// ErrProductNotFound is returned (wrapped) when no product has the requested ID.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id uint) (*models.Product, error)
	ExistsByID(id uint) (bool, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error

	SearchByName(name string) ([]models.Product, error)
	FindByPriceAtLeast(price decimal.Decimal) ([]models.Product, error)
	FindByStockBelow(stock int) ([]models.Product, error)
	FindByPriceBetween(minPrice, maxPrice decimal.Decimal) ([]models.Product, error)
	FindByNameAndStockAbove(name string, stock int) ([]models.Product, error)

	// WithTx runs fn against a repository bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(fn func(repo ProductRepository) error) error
}
