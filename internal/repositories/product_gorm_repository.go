package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"catalog/internal/models"
)

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	return r.find("get all products", r.db)
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// ExistsByID reports whether a product with the given ID is stored.
func (r *GORMProductRepository) ExistsByID(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product %d: %w", id, err)
	}
	return count > 0, nil
}

// Create inserts a new product; the database assigns its ID.
func (r *GORMProductRepository) Create(product *models.Product) error {
	product.ID = 0
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes every mutable column of an existing product.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Model(product).
		Select("name", "description", "price", "stock").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", product.ID, ErrProductNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
	}
	return nil
}

// SearchByName returns products whose name contains name, ignoring case.
func (r *GORMProductRepository) SearchByName(name string) ([]models.Product, error) {
	return r.find("search products by name", r.nameContains(r.db, name))
}

// FindByPriceAtLeast returns products with price >= price.
func (r *GORMProductRepository) FindByPriceAtLeast(price decimal.Decimal) ([]models.Product, error) {
	return r.find("find products by minimum price", r.db.Where("price >= ?", price))
}

// FindByStockBelow returns products with stock < stock.
func (r *GORMProductRepository) FindByStockBelow(stock int) ([]models.Product, error) {
	return r.find("find products by maximum stock", r.db.Where("stock < ?", stock))
}

// FindByPriceBetween returns products with minPrice <= price <= maxPrice.
func (r *GORMProductRepository) FindByPriceBetween(minPrice, maxPrice decimal.Decimal) ([]models.Product, error) {
	return r.find("find products by price range", r.db.Where("price BETWEEN ? AND ?", minPrice, maxPrice))
}

// FindByNameAndStockAbove returns products whose name contains name,
// ignoring case, with stock > stock.
func (r *GORMProductRepository) FindByNameAndStockAbove(name string, stock int) ([]models.Product, error) {
	return r.find("find products by name and stock", r.nameContains(r.db, name).Where("stock > ?", stock))
}

// WithTx runs fn inside a database transaction.
func (r *GORMProductRepository) WithTx(fn func(repo ProductRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GORMProductRepository{db: tx})
	})
}

func (r *GORMProductRepository) nameContains(db *gorm.DB, name string) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(name) + "%"
	return db.Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, pattern)
}

func (r *GORMProductRepository) find(op string, query *gorm.DB) ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := query.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return products, nil
}
