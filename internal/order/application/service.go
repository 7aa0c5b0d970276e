package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	sagadomain "github.com/dmehra2102/order-fulfillment/internal/orchestrator/domain"
	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
)

type PlaceOrderRequest struct {
	ProductID   int64
	Quantity    int64
	TotalAmount decimal.Decimal
	PaymentMode domain.PaymentMode
}

// Amounts are stored as NUMERIC(14,2).
var maxAmount = decimal.New(1, 12)

func (r PlaceOrderRequest) Validate() error {
	switch {
	case r.ProductID <= 0:
		return apperr.Invalid("productId must be positive")
	case r.Quantity <= 0:
		return apperr.Invalid("quantity must be positive")
	case r.TotalAmount.IsNegative():
		return apperr.Invalid("totalAmount must not be negative")
	case r.TotalAmount.GreaterThanOrEqual(maxAmount):
		return apperr.Invalid("totalAmount is too large")
	case !r.TotalAmount.Equal(r.TotalAmount.Truncate(2)):
		return apperr.Invalid("totalAmount must have at most 2 decimal places")
	case !r.PaymentMode.Valid():
		return apperr.Invalid("unsupported paymentMode " + string(r.PaymentMode))
	}
	return nil
}

// PaymentOutcome is the result of the payment step. A failed payment is a
// value the placement branches on, never an error returned to the caller.
type PaymentOutcome struct {
	PaymentID int64
	Err       error
}

func (p PaymentOutcome) Succeeded() bool { return p.Err == nil }

type Service struct {
	log   *slog.Logger
	repo  OrderRepository
	inv   InventoryClient
	pay   PaymentClient
	comp  Compensator
	now   func() time.Time
	refID func() string
}

func NewService(log *slog.Logger, repo OrderRepository, inv InventoryClient, pay PaymentClient, comp Compensator) *Service {
	return &Service{
		log:   log,
		repo:  repo,
		inv:   inv,
		pay:   pay,
		comp:  comp,
		now:   time.Now,
		refID: uuid.NewString,
	}
}

// PlaceOrder reserves stock, records the order, attempts payment and stores
// the terminal status. Once the order exists its id is returned even when
// payment fails. Steps after a successful reservation ignore cancellation
// of ctx so a reservation is never left without an order.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	saga := sagadomain.NewSaga(req.ProductID, req.Quantity, s.now())
	defer s.comp.OnFinished(context.WithoutCancel(ctx), saga)

	if err := s.inv.Reserve(ctx, req.ProductID, req.Quantity); err != nil {
		saga.Finish(sagadomain.OutcomeRejected)
		s.log.WarnContext(ctx, "reservation rejected", "product_id", req.ProductID, "quantity", req.Quantity, "err", err)
		return 0, reservationError(err)
	}
	saga.Complete(sagadomain.StepReserve)

	ctx = context.WithoutCancel(ctx)

	o, err := s.repo.Create(ctx, domain.NewOrder(req.ProductID, req.Quantity, req.TotalAmount, s.now()))
	if err != nil {
		saga.Finish(sagadomain.OutcomeFailed)
		s.log.ErrorContext(ctx, "order not created after reservation", "product_id", req.ProductID, "quantity", req.Quantity, "err", err)
		return 0, apperr.Internal("could not create order", err)
	}
	saga.OrderID = o.ID
	saga.Complete(sagadomain.StepCreateOrder)

	outcome := s.payFor(ctx, o, req.PaymentMode)
	saga.Complete(sagadomain.StepPay)
	var moved error
	if outcome.Succeeded() {
		moved = o.MarkPlaced()
		saga.Finish(sagadomain.OutcomePlaced)
	} else {
		moved = o.MarkPaymentFailed()
		saga.Finish(sagadomain.OutcomePaymentFailed)
		s.comp.OnPaymentFailed(ctx, saga, outcome.Err)
	}
	if moved != nil {
		saga.Finish(sagadomain.OutcomeFailed)
		s.log.ErrorContext(ctx, "order status transition rejected", "order_id", o.ID, "status", o.Status, "err", moved)
		return o.ID, apperr.Internal("could not move order out of "+string(o.Status), moved)
	}

	if err := s.repo.Update(ctx, o); err != nil {
		saga.Finish(sagadomain.OutcomeFailed)
		s.log.ErrorContext(ctx, "order status not saved", "order_id", o.ID, "status", o.Status, "err", err)
		return o.ID, apperr.Internal("could not update order", err)
	}
	saga.Complete(sagadomain.StepUpdateOrder)

	s.log.InfoContext(ctx, "order placed", "order_id", o.ID, "status", o.Status, "payment_id", outcome.PaymentID)
	return o.ID, nil
}

func (s *Service) payFor(ctx context.Context, o domain.Order, mode domain.PaymentMode) PaymentOutcome {
	id, err := s.pay.Pay(ctx, PaymentRequest{
		OrderID:         o.ID,
		Amount:          o.Amount,
		Mode:            mode,
		ReferenceNumber: s.refID(),
	})
	if err != nil {
		s.log.WarnContext(ctx, "payment failed", "order_id", o.ID, "err", err)
		return PaymentOutcome{Err: apperr.PaymentFailed(err)}
	}
	return PaymentOutcome{PaymentID: id}
}

// GetOrderDetails assembles the order with its product and payment. A
// missing order is NotFound; any failure reading the other services is
// UpstreamUnavailable.
func (s *Service) GetOrderDetails(ctx context.Context, id int64) (AggregateView, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return AggregateView{}, err
		}
		return AggregateView{}, apperr.Internal("could not load order", err)
	}

	product, err := s.inv.Product(ctx, o.ProductID)
	if err != nil {
		s.log.ErrorContext(ctx, "product lookup failed", "order_id", id, "product_id", o.ProductID, "err", err)
		return AggregateView{}, apperr.Upstream("could not load product details", err)
	}

	payment, err := s.pay.ByOrderID(ctx, o.ID)
	if err != nil {
		s.log.ErrorContext(ctx, "payment lookup failed", "order_id", id, "err", err)
		return AggregateView{}, apperr.Upstream("could not load payment details", err)
	}

	return Compose(o, product, payment), nil
}

// reservationError passes business rejections through and turns anything
// else into UpstreamUnavailable.
func reservationError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrInsufficientQuantity),
		errors.Is(err, apperr.ErrInvalidRequest),
		errors.Is(err, apperr.ErrUpstreamUnavailable):
		return err
	}
	return apperr.Upstream("inventory service unavailable", err)
}
