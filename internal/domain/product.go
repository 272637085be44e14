package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string           `json:"id"`
	MerchantID  string           `json:"merchant_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	Category    string           `json:"category,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	Stock       int              `json:"stock"`
	Active      bool             `json:"active"`
	Embedding   *pgvector.Vector `json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductFilter describe los filtros soportados por el listado público.
type ProductFilter struct {
	Query      string
	Category   string
	MerchantID string
	Limit      int
	Offset     int
}
