package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/order-fulfillment/internal/payment/domain"
)

type PayRequest struct {
	OrderID         int64
	Amount          decimal.Decimal
	Mode            domain.Mode
	ReferenceNumber string
}

type Service struct {
	log  *slog.Logger
	repo PaymentRepository
	now  func() time.Time
}

func NewService(log *slog.Logger, repo PaymentRepository) *Service {
	return &Service{log: log, repo: repo, now: time.Now}
}

// Pay records exactly one successful payment or nothing at all.
func (s *Service) Pay(ctx context.Context, req PayRequest) (int64, error) {
	p, err := domain.NewPayment(req.OrderID, req.Amount, req.Mode, req.ReferenceNumber, s.now())
	if err != nil {
		return 0, err
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "payment recorded", "payment_id", id, "order_id", req.OrderID, "mode", req.Mode)
	return id, nil
}

func (s *Service) ByOrderID(ctx context.Context, orderID int64) (domain.Payment, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}
