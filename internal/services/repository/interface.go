package repository

import (
	"context"
)

// CatalogService is one bookable service of the marketplace catalog.
// Prices are whole CFA francs (XOF has no minor unit).
type CatalogService struct {
	ID           string  `db:"id" yaml:"id"`
	Name         string  `db:"name" yaml:"name"`
	Description  *string `db:"description" yaml:"description,omitempty"`
	BasePrice    int64   `db:"base_price" yaml:"basePrice"`
	IsActive     bool    `db:"is_active" yaml:"-"`
	DisplayOrder int     `db:"display_order" yaml:"-"`
}

// Reader provides read operations over the service catalog.
type Reader interface {
	GetByID(ctx context.Context, id string) (CatalogService, error)
	ListActive(ctx context.Context) ([]CatalogService, error)
}
