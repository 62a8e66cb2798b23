// Package service provides the catalog business logic.
package service

import (
	"context"
	"fmt"

	"github.com/abgdnv/cloudshop/internal/product/model"
	"github.com/abgdnv/cloudshop/internal/product/store"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the catalog operations.
type ProductService interface {
	// FindAll returns all products with their stock counts.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]model.ProductWithStock, error)

	// FindByID retrieves a single product with its stock count.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*model.ProductWithStock, error)

	// Create assigns a fresh identifier and stores the product together with its stock.
	Create(ctx context.Context, product ProductCreateDto) (*model.ProductWithStock, error)
}

// ProductCreateDto carries an already validated product to be created.
type ProductCreateDto struct {
	Title       string
	Description string
	Price       float64
	Count       int64
}

// FromImportRecord converts a queued import record.
func FromImportRecord(r model.ImportRecord) ProductCreateDto {
	return ProductCreateDto{Title: r.Title, Description: r.Description, Price: r.Price, Count: r.Count}
}

// Service implements ProductService on top of a ProductStore.
type Service struct {
	repository      store.ProductStore
	newID           func() string
	productsCounter metric.Int64Counter
}

func NewService(repo store.ProductStore) *Service {
	meter := otel.Meter("catalog")
	productsCounter, err := meter.Int64Counter("products_created", metric.WithDescription("Total number of created products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}
	return &Service{
		repository:      repo,
		newID:           uuid.NewString,
		productsCounter: productsCounter,
	}
}

func (s *Service) FindAll(ctx context.Context) ([]model.ProductWithStock, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	if products == nil {
		products = []model.ProductWithStock{}
	}
	return products, nil
}

func (s *Service) FindByID(ctx context.Context, id string) (*model.ProductWithStock, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return product, nil
}

func (s *Service) Create(ctx context.Context, dto ProductCreateDto) (*model.ProductWithStock, error) {
	product := model.Product{
		ID:          s.newID(),
		Title:       dto.Title,
		Description: dto.Description,
		Price:       dto.Price,
	}
	stock := model.Stock{ProductID: product.ID, Count: dto.Count}
	if err := s.repository.CreateWithStock(ctx, product, stock); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.productsCounter.Add(ctx, 1)
	return &model.ProductWithStock{Product: product, Count: stock.Count}, nil
}
