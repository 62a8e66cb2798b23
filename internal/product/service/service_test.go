package service

import (
	"context"
	"errors"
	"testing"

	perrors "github.com/abgdnv/cloudshop/internal/product/errors"
	"github.com/abgdnv/cloudshop/internal/product/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductStore is an in-memory ProductStore that can be told to fail.
type mockProductStore struct {
	products []model.ProductWithStock
	created  []model.Product
	stocks   []model.Stock
	error    error
}

func (m *mockProductStore) FindAll(_ context.Context) ([]model.ProductWithStock, error) {
	return m.products, m.error
}

func (m *mockProductStore) FindByID(_ context.Context, id string) (*model.ProductWithStock, error) {
	if m.error != nil {
		return nil, m.error
	}
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, perrors.ErrProductNotFound
}

func (m *mockProductStore) CreateWithStock(_ context.Context, product model.Product, stock model.Stock) error {
	if m.error != nil {
		return m.error
	}
	m.created = append(m.created, product)
	m.stocks = append(m.stocks, stock)
	m.products = append(m.products, model.ProductWithStock{Product: product, Count: stock.Count})
	return nil
}

func Test_ProductService_FindByID(t *testing.T) {
	shoe := model.ProductWithStock{Product: model.Product{ID: "1", Title: "Shoe", Description: "D", Price: 10}, Count: 3}
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		productID   string
		expected    *model.ProductWithStock
		expectError error
	}{
		{
			name:      "Success - product found",
			mockStore: &mockProductStore{products: []model.ProductWithStock{shoe}},
			productID: "1",
			expected:  &shoe,
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{},
			productID:   "2",
			expectError: perrors.ErrProductNotFound,
		},
		{
			name:        "Error - store failure",
			mockStore:   &mockProductStore{error: errors.New("connection reset")},
			productID:   "1",
			expectError: errors.New("connection reset"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := NewService(tc.mockStore)

			// when
			found, err := svc.FindByID(context.Background(), tc.productID)

			// then
			if tc.expectError != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectError.Error())
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_ProductService_FindAll(t *testing.T) {
	t.Run("nil from store becomes empty list", func(t *testing.T) {
		// given
		svc := NewService(&mockProductStore{})

		// when
		list, err := svc.FindAll(context.Background())

		// then
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		// given
		svc := NewService(&mockProductStore{error: errors.New("timeout")})

		// when
		_, err := svc.FindAll(context.Background())

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})
}

func Test_ProductService_Create(t *testing.T) {
	// given
	store := &mockProductStore{}
	svc := NewService(store)
	dto := ProductCreateDto{Title: "Shoe", Description: "D", Price: 10, Count: 3}

	// when
	first, err := svc.Create(context.Background(), dto)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), dto)
	require.NoError(t, err)

	// then
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID, "every create mints a new identifier")
	assert.Equal(t, int64(3), first.Count)
	require.Len(t, store.created, 2)
	require.Len(t, store.stocks, 2)
	assert.Equal(t, store.created[0].ID, store.stocks[0].ProductID)

	// round trip through the read path
	found, err := svc.FindByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, found)
}

func Test_FromImportRecord(t *testing.T) {
	dto := FromImportRecord(model.ImportRecord{Title: "Shoe", Description: "D", Price: 10, Count: 3})
	assert.Equal(t, ProductCreateDto{Title: "Shoe", Description: "D", Price: 10, Count: 3}, dto)
}
