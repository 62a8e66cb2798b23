// Package store provides the catalog storage backends.
package store

import (
	"context"

	"github.com/abgdnv/cloudshop/internal/product/model"
)

// ProductStore abstracts where products and their stock live.
type ProductStore interface {
	// FindAll returns every product joined with its stock count.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]model.ProductWithStock, error)

	// FindByID returns one product joined with its stock count.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*model.ProductWithStock, error)

	// CreateWithStock writes the product and its stock atomically: both rows exist afterwards or neither does.
	CreateWithStock(ctx context.Context, product model.Product, stock model.Stock) error
}

// join combines products with stock counts keyed by product id; a product without stock gets count 0.
func join(products []model.Product, counts map[string]int64) []model.ProductWithStock {
	result := make([]model.ProductWithStock, 0, len(products))
	for _, p := range products {
		result = append(result, model.ProductWithStock{Product: p, Count: counts[p.ID]})
	}
	return result
}
