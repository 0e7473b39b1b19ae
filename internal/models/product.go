package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null"`
	Description *string         `json:"description" gorm:"type:varchar(255)"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock       int             `json:"stock" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Equal reports whether p and other are the same catalog entry. Products are
// identified by ID alone; two unsaved products (ID 0) are never equal.
func (p Product) Equal(other Product) bool {
	return p.ID != 0 && p.ID == other.ID
}

// MarshalJSON renders the price as a JSON number with two decimals.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		Price json.Number `json:"price"`
	}{
		product: product(p),
		Price:   json.Number(p.Price.StringFixed(2)),
	})
}

// ProductRequest is the payload accepted by create and update. Every field is
// a pointer so a missing value can be told apart from a zero value.
type ProductRequest struct {
	Name        *string          `json:"name" validate:"required,notblank,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=255"`
	Price       *decimal.Decimal `json:"price" validate:"-"`
	Stock       *int             `json:"stock" validate:"required,min=0"`
}

// ApplyTo replaces every field of p except its ID with the request values.
// The request must have passed validation.
func (r ProductRequest) ApplyTo(p *Product) {
	p.Name = *r.Name
	p.Description = nil
	if r.Description != nil {
		description := *r.Description
		p.Description = &description
	}
	p.Price = *r.Price
	p.Stock = *r.Stock
}

// ProductCreatedEvent is emitted to the audit sink after a product is stored.
type ProductCreatedEvent struct {
	ProductID  uint      `json:"product_id"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}
