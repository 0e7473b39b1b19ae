package repositories_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/models"
	"catalog/internal/repositories"
)

// stores returns every ProductRepository implementation, each empty.
func stores(t *testing.T) map[string]repositories.ProductRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	return map[string]repositories.ProductRepository{
		"gorm":   repositories.NewGORMProductRepository(db),
		"memory": repositories.NewInMemoryProductRepository(),
	}
}

func forEachStore(t *testing.T, fn func(t *testing.T, repo repositories.ProductRepository)) {
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) { fn(t, repo) })
	}
}

func product(name, price string, stock int) *models.Product {
	return &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
}

func ids(products []models.Product) []uint {
	out := make([]uint, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestProductRepository_CRUD(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repositories.ProductRepository) {
		description := "Portable computer"
		laptop := product("Laptop", "1299.99", 5)
		laptop.Description = &description
		require.NoError(t, repo.Create(laptop))
		assert.NotZero(t, laptop.ID)

		got, err := repo.GetByID(laptop.ID)
		require.NoError(t, err)
		assert.True(t, got.Equal(*laptop))
		assert.Equal(t, "Laptop", got.Name)
		require.NotNil(t, got.Description)
		assert.Equal(t, description, *got.Description)
		assert.True(t, got.Price.Equal(decimal.RequireFromString("1299.99")), got.Price.String())
		assert.Equal(t, 5, got.Stock)

		exists, err := repo.ExistsByID(laptop.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		got.Name = "Laptop Pro"
		got.Description = nil
		got.Stock = 0
		require.NoError(t, repo.Update(got))
		updated, err := repo.GetByID(laptop.ID)
		require.NoError(t, err)
		assert.Equal(t, laptop.ID, updated.ID)
		assert.Equal(t, "Laptop Pro", updated.Name)
		assert.Nil(t, updated.Description)
		assert.Equal(t, 0, updated.Stock)

		require.NoError(t, repo.Delete(laptop.ID))
		_, err = repo.GetByID(laptop.ID)
		assert.ErrorIs(t, err, repositories.ErrProductNotFound)
		exists, err = repo.ExistsByID(laptop.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		all, err := repo.GetAll()
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})
}

func TestProductRepository_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repositories.ProductRepository) {
		_, err := repo.GetByID(404)
		assert.ErrorIs(t, err, repositories.ErrProductNotFound)

		ghost := product("Ghost", "1.00", 1)
		ghost.ID = 404
		assert.ErrorIs(t, repo.Update(ghost), repositories.ErrProductNotFound)
		assert.ErrorIs(t, repo.Delete(404), repositories.ErrProductNotFound)

		all, err := repo.GetAll()
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestProductRepository_Queries(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repositories.ProductRepository) {
		apple := product("Apple", "10.00", 5)
		pie := product("apple pie", "20.00", 0)
		widget := product("Widget", "15.00", 8)
		wildcard := product("100% juice_box", "2.50", 2)
		for _, p := range []*models.Product{apple, pie, widget, wildcard} {
			require.NoError(t, repo.Create(p))
		}

		cases := []struct {
			name  string
			query func() ([]models.Product, error)
			want  []uint
		}{
			{"search apple", func() ([]models.Product, error) { return repo.SearchByName("apple") }, []uint{apple.ID, pie.ID}},
			{"search is case insensitive", func() ([]models.Product, error) { return repo.SearchByName("WID") }, []uint{widget.ID}},
			{"search lower finds upper", func() ([]models.Product, error) { return repo.SearchByName("widget") }, []uint{widget.ID}},
			{"search percent is literal", func() ([]models.Product, error) { return repo.SearchByName("%") }, []uint{wildcard.ID}},
			{"search underscore is literal", func() ([]models.Product, error) { return repo.SearchByName("e_b") }, []uint{wildcard.ID}},
			{"search empty matches all", func() ([]models.Product, error) { return repo.SearchByName("") }, []uint{apple.ID, pie.ID, widget.ID, wildcard.ID}},
			{"search no match", func() ([]models.Product, error) { return repo.SearchByName("zzz") }, []uint{}},
			{"stock below 1", func() ([]models.Product, error) { return repo.FindByStockBelow(1) }, []uint{pie.ID}},
			{"stock below is exclusive", func() ([]models.Product, error) { return repo.FindByStockBelow(5) }, []uint{pie.ID, wildcard.ID}},
			{"price at least is inclusive", func() ([]models.Product, error) {
				return repo.FindByPriceAtLeast(decimal.RequireFromString("15"))
			}, []uint{pie.ID, widget.ID}},
			{"price between", func() ([]models.Product, error) {
				return repo.FindByPriceBetween(decimal.NewFromInt(15), decimal.NewFromInt(25))
			}, []uint{pie.ID, widget.ID}},
			{"price between is inclusive", func() ([]models.Product, error) {
				return repo.FindByPriceBetween(decimal.RequireFromString("10.00"), decimal.RequireFromString("15.00"))
			}, []uint{apple.ID, widget.ID}},
			{"price between inverted", func() ([]models.Product, error) {
				return repo.FindByPriceBetween(decimal.NewFromInt(25), decimal.NewFromInt(15))
			}, []uint{}},
			{"name and stock above", func() ([]models.Product, error) { return repo.FindByNameAndStockAbove("apple", 0) }, []uint{apple.ID}},
			{"name and stock above is exclusive", func() ([]models.Product, error) { return repo.FindByNameAndStockAbove("apple", 5) }, []uint{}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := tc.query()
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, tc.want, ids(got))
			})
		}
	})
}

func TestProductRepository_WithTx(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repositories.ProductRepository) {
		kept := product("Kept", "1.00", 1)
		require.NoError(t, repo.Create(kept))

		boom := errors.New("boom")
		err := repo.WithTx(func(tx repositories.ProductRepository) error {
			if err := tx.Create(product("Rolled back", "2.00", 2)); err != nil {
				return err
			}
			if err := tx.Delete(kept.ID); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		all, err := repo.GetAll()
		require.NoError(t, err)
		assert.Equal(t, []uint{kept.ID}, ids(all))

		var committed *models.Product
		err = repo.WithTx(func(tx repositories.ProductRepository) error {
			committed = product("Committed", "3.00", 3)
			return tx.Create(committed)
		})
		require.NoError(t, err)
		got, err := repo.GetByID(committed.ID)
		require.NoError(t, err)
		assert.Equal(t, "Committed", got.Name)
	})
}
