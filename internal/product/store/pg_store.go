package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/cloudshop/internal/product/errors"
	"github.com/abgdnv/cloudshop/internal/product/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	selectProducts = `SELECT p.id::text, p.title, p.description, p.price, COALESCE(s.count, 0)
		FROM products p LEFT JOIN stocks s ON s.product_id = p.id`
	insertProduct = `INSERT INTO products (id, title, description, price) VALUES ($1, $2, $3, $4)`
	insertStock   = `INSERT INTO stocks (product_id, count) VALUES ($1, $2)`
)

// PgStore implements ProductStore on PostgreSQL.
type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

func (p *PgStore) FindAll(ctx context.Context) ([]model.ProductWithStock, error) {
	rows, err := p.db.Query(ctx, selectProducts+` ORDER BY p.title, p.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// FindByID returns ErrProductNotFound for ids that are not UUIDs as well, since none can exist.
func (p *PgStore) FindByID(ctx context.Context, id string) (*model.ProductWithStock, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, perrors.ErrProductNotFound
	}
	rows, err := p.db.Query(ctx, selectProducts+` WHERE p.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

func (p *PgStore) CreateWithStock(ctx context.Context, product model.Product, stock model.Stock) error {
	return p.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertProduct, product.ID, product.Title, product.Description, product.Price); err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}
		if _, err := tx.Exec(ctx, insertStock, stock.ProductID, stock.Count); err != nil {
			return fmt.Errorf("failed to insert stock: %w", err)
		}
		return nil
	})
}

// withTx runs fn in a transaction, committing on success and rolling back otherwise.
func (p *PgStore) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (model.ProductWithStock, error) {
	var p model.ProductWithStock
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Count)
	return p, err
}
