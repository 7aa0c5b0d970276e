package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
)

//go:embed schema.sql
var schema string

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

func (r *Repository) Add(ctx context.Context, p domain.Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, price, quantity) VALUES ($1, $2::numeric, $3) RETURNING id`,
		p.Name, p.Price.String(), p.Quantity,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, price::text, quantity FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &price, &p.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("query product: %w", err)
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Product{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	return p, nil
}

// Reserve decrements in a single conditional UPDATE; the row lock taken by
// the UPDATE serialises concurrent reservations of the same product.
func (r *Repository) Reserve(ctx context.Context, id, quantity int64) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE products
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	return r.missOrShort(ctx, id)
}

func (r *Repository) Release(ctx context.Context, id, quantity int64) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE products SET quantity = quantity + $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *Repository) missOrShort(ctx context.Context, id int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	return domain.ErrInsufficientQuantity
}
