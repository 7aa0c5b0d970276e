package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/outbox"
	"github.com/dmehra2102/order-fulfillment/pkg/tracing"
)

//go:embed schema.sql
var schema string

// Repository stores orders and, in the same transaction, the outbox event
// announcing each status change.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("orders schema: %w", err)
	}
	if _, err := r.pool.Exec(ctx, outbox.Schema); err != nil {
		return fmt.Errorf("outbox schema: %w", err)
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (product_id, quantity, amount, order_date, status)
			VALUES ($1, $2, $3::numeric, $4, $5)
			RETURNING id`,
			o.ProductID, o.Quantity, o.Amount.String(), o.OrderDate, string(o.Status),
		).Scan(&o.ID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return r.appendEvent(ctx, tx, o)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// Update moves a CREATED order to its stored status. Orders already in a
// terminal status are left untouched and reported as an error.
func (r *Repository) Update(ctx context.Context, o domain.Order) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
			UPDATE orders SET status = $2, updated_at = now()
			WHERE id = $1 AND status = $3`,
			o.ID, string(o.Status), string(domain.StatusCreated),
		)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("update order %d: no order in %s", o.ID, domain.StatusCreated)
		}
		return r.appendEvent(ctx, tx, o)
	})
}

func (r *Repository) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	var (
		o      domain.Order
		amount string
		status string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, product_id, quantity, amount::text, order_date, status
		FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.ProductID, &o.Quantity, &amount, &o.OrderDate, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order: %w", err)
	}
	if o.Amount, err = decimal.NewFromString(amount); err != nil {
		return domain.Order{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	o.Status = domain.OrderStatus(status)
	o.OrderDate = o.OrderDate.UTC()
	return o, nil
}

func (r *Repository) appendEvent(ctx context.Context, tx pgx.Tx, o domain.Order) error {
	eventType, payload := domain.EventFor(o)
	ev, err := outbox.NewEvent("order", strconv.FormatInt(o.ID, 10), eventType, payload, tracing.Traceparent(ctx))
	if err != nil {
		return err
	}
	ev.Headers["source"] = "order-service"
	if err := outbox.Insert(ctx, tx, ev); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
