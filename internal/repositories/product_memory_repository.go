package repositories

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"catalog/internal/filters"
	"catalog/internal/models"
)

// InMemoryProductRepository is an in-memory implementation of
// ProductRepository. Its natural order is ascending ID.
type InMemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
	txMu     sync.Mutex
}

// NewInMemoryProductRepository creates a new instance of InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: make(map[uint]models.Product),
	}
}

// GetAll returns all products.
func (r *InMemoryProductRepository) GetAll() ([]models.Product, error) {
	return r.filter(filters.All()), nil
}

// GetByID returns a product by its ID.
func (r *InMemoryProductRepository) GetByID(id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// ExistsByID reports whether a product with the given ID is stored.
func (r *InMemoryProductRepository) ExistsByID(id uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.products[id]
	return ok, nil
}

// Create stores a new product under the next free ID.
func (r *InMemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now()
	product.ID = r.nextID
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *InMemoryProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %d: %w", product.ID, ErrProductNotFound)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *InMemoryProductRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
	}
	delete(r.products, id)
	return nil
}

// SearchByName returns products whose name contains name, ignoring case.
func (r *InMemoryProductRepository) SearchByName(name string) ([]models.Product, error) {
	return r.filter(filters.NameContains(name)), nil
}

// FindByPriceAtLeast returns products with price >= price.
func (r *InMemoryProductRepository) FindByPriceAtLeast(price decimal.Decimal) ([]models.Product, error) {
	return r.filter(filters.PriceAtLeast(price)), nil
}

// FindByStockBelow returns products with stock < stock.
func (r *InMemoryProductRepository) FindByStockBelow(stock int) ([]models.Product, error) {
	return r.filter(filters.StockBelow(stock)), nil
}

// FindByPriceBetween returns products with minPrice <= price <= maxPrice.
func (r *InMemoryProductRepository) FindByPriceBetween(minPrice, maxPrice decimal.Decimal) ([]models.Product, error) {
	return r.filter(filters.PriceBetween(minPrice, maxPrice)), nil
}

// FindByNameAndStockAbove returns products whose name contains name,
// ignoring case, with stock > stock.
func (r *InMemoryProductRepository) FindByNameAndStockAbove(name string, stock int) ([]models.Product, error) {
	return r.filter(filters.NameContainsWithStockAbove(name, stock)), nil
}

// WithTx serialises fn against other transactions and restores the previous
// contents if fn fails. Writes made outside WithTx are not isolated from it.
func (r *InMemoryProductRepository) WithTx(fn func(repo ProductRepository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.RLock()
	products, nextID := maps.Clone(r.products), r.nextID
	r.mu.RUnlock()

	if err := fn(memoryProductTx{r}); err != nil {
		r.mu.Lock()
		r.products, r.nextID = products, nextID
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *InMemoryProductRepository) filter(pred filters.Predicate) []models.Product {
	r.mu.RLock()
	all := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, p)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b models.Product) int { return cmp.Compare(a.ID, b.ID) })
	return filters.Apply(all, pred)
}

// memoryProductTx is the repository handed to WithTx callbacks; nested
// transactions join the outer one.
type memoryProductTx struct {
	*InMemoryProductRepository
}

func (t memoryProductTx) WithTx(fn func(repo ProductRepository) error) error {
	return fn(t)
}
