package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry owned by the remote store.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// StockValue is quantity × price.
func (p Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(p.Quantity))
}

// ProductInput is the create/update payload.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"required,max=500"`
	Price       decimal.Decimal `json:"price" validate:"gt=0,lte=999999.99"`
	Quantity    int64           `json:"quantity" validate:"gte=0,lte=999999"`
}

// Page is the pagination cursor returned with every product listing.
type Page struct {
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}
