package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/order-fulfillment/internal/payment/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/outbox"
	"github.com/dmehra2102/order-fulfillment/pkg/tracing"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("payments schema: %w", err)
	}
	if _, err := r.pool.Exec(ctx, outbox.Schema); err != nil {
		return fmt.Errorf("outbox schema: %w", err)
	}
	return nil
}

// Create inserts the payment and its PaymentRecorded event atomically.
func (r *Repository) Create(ctx context.Context, p domain.Payment) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO payments (order_id, amount, payment_mode, status, reference_number, payment_date)
		VALUES ($1, $2::numeric, $3, $4, $5, $6)
		RETURNING id`,
		p.OrderID, p.Amount.String(), string(p.Mode), string(p.Status), p.ReferenceNumber, p.PaymentDate,
	).Scan(&p.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return 0, domain.ErrAlreadyPaid
	}
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}

	ev, err := outbox.NewEvent("payment", strconv.FormatInt(p.ID, 10), domain.EventPaymentRecorded, domain.Recorded(p), tracing.Traceparent(ctx))
	if err != nil {
		return 0, err
	}
	ev.Headers["source"] = "payment-service"
	if err := outbox.Insert(ctx, tx, ev); err != nil {
		return 0, fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (r *Repository) FindByOrderID(ctx context.Context, orderID int64) (domain.Payment, error) {
	var (
		p      domain.Payment
		amount string
		mode   string
		status string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, order_id, amount::text, payment_mode, status, reference_number, payment_date
		FROM payments WHERE order_id = $1`, orderID,
	).Scan(&p.ID, &p.OrderID, &amount, &mode, &status, &p.ReferenceNumber, &p.PaymentDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	if err != nil {
		return domain.Payment{}, fmt.Errorf("query payment: %w", err)
	}
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return domain.Payment{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	p.Mode = domain.Mode(mode)
	p.Status = domain.Status(status)
	p.PaymentDate = p.PaymentDate.UTC()
	return p, nil
}
