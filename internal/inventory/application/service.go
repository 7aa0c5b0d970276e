package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
)

type Service struct {
	log     *slog.Logger
	repo    ProductRepository
	metrics ReservationRecorder
}

func NewService(log *slog.Logger, repo ProductRepository, metrics ReservationRecorder) *Service {
	return &Service{log: log, repo: repo, metrics: metrics}
}

func (s *Service) AddProduct(ctx context.Context, p domain.Product) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	id, err := s.repo.Add(ctx, p)
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "product added", "product_id", id, "quantity", p.Quantity)
	return id, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

// Reserve takes quantity units of a product or fails without touching stock.
func (s *Service) Reserve(ctx context.Context, id, quantity int64) error {
	if quantity <= 0 {
		return apperr.Invalid("quantity must be positive")
	}

	err := s.repo.Reserve(ctx, id, quantity)
	switch {
	case err == nil:
		s.record("reserved")
		s.log.InfoContext(ctx, "stock reserved", "product_id", id, "quantity", quantity)
	case errors.Is(err, apperr.ErrInsufficientQuantity):
		s.record("insufficient_quantity")
		s.log.WarnContext(ctx, "insufficient stock", "product_id", id, "quantity", quantity)
	case errors.Is(err, apperr.ErrNotFound):
		s.record("not_found")
	default:
		s.record("error")
		s.log.ErrorContext(ctx, "reserve failed", "product_id", id, "err", err)
	}
	return err
}

// Release returns previously reserved units.
func (s *Service) Release(ctx context.Context, id, quantity int64) error {
	if quantity <= 0 {
		return apperr.Invalid("quantity must be positive")
	}
	if err := s.repo.Release(ctx, id, quantity); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "stock released", "product_id", id, "quantity", quantity)
	return nil
}

func (s *Service) record(result string) {
	if s.metrics != nil {
		s.metrics.Reservation(result)
	}
}
