package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/order-fulfillment/internal/order/application"
	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
	"github.com/dmehra2102/order-fulfillment/pkg/idempotency"
)

// Idempotency remembers the order id produced for an Idempotency-Key.
type Idempotency interface {
	Claim(ctx context.Context, key string) (string, bool, error)
	Complete(ctx context.Context, key, result string) error
	Release(ctx context.Context, key string) error
}

type Handler struct {
	log     *slog.Logger
	service *application.Service
	idem    Idempotency
	tracer  trace.Tracer
}

// NewHandler builds the order API. idem may be nil, in which case the
// Idempotency-Key header is ignored.
func NewHandler(log *slog.Logger, service *application.Service, idem Idempotency) *Handler {
	return &Handler{
		log:     log,
		service: service,
		idem:    idem,
		tracer:  otel.Tracer("order-http"),
	}
}

type placeOrderReq struct {
	ProductID   int64           `json:"productId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Quantity    int64           `json:"quantity"`
	PaymentMode string          `json:"paymentMode"`
}

// placeFailure is the error body for a placement that created an order but
// could not finish it.
type placeFailure struct {
	apperr.Body
	OrderID int64 `json:"orderId"`
}

type orderResp struct {
	OrderID        int64          `json:"orderId"`
	OrderStatus    string         `json:"orderStatus"`
	OrderDate      time.Time      `json:"orderDate"`
	Amount         json.Number    `json:"amount"`
	ProductDetails productDetails `json:"productDetails"`
	PaymentDetails paymentDetails `json:"paymentDetails"`
}

type productDetails struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
}

type paymentDetails struct {
	PaymentID     int64     `json:"paymentId"`
	PaymentStatus string    `json:"paymentStatus"`
	PaymentDate   time.Time `json:"paymentDate"`
	PaymentMode   string    `json:"paymentMode"`
}

func (h *Handler) Routes(mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(mw...)

	r.Get("/health", health)
	r.Post("/order/placeOrder", h.placeOrder)
	r.Get("/order/{orderId}", h.getOrder)
	return r
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.Invalid("invalid body"))
		return
	}

	key := idempotency.FromRequest(r)
	if key != "" && h.idem != nil {
		stored, claimed, err := h.idem.Claim(ctx, key)
		switch {
		case errors.Is(err, idempotency.ErrInFlight):
			apperr.Write(w, apperr.New(apperr.ErrInvalidRequest, "REQUEST_IN_FLIGHT", "a request with this idempotency key is still running", nil).WithStatus(http.StatusConflict))
			return
		case err != nil:
			h.log.WarnContext(ctx, "idempotency unavailable, continuing without it", "err", err)
			key = ""
		case !claimed:
			id, perr := strconv.ParseInt(stored, 10, 64)
			if perr == nil {
				span.SetAttributes(attribute.Int64("order.id", id), attribute.Bool("idempotent.replay", true))
				w.Header().Set("Idempotent-Replayed", "true")
				writeJSON(w, http.StatusOK, id)
				return
			}
			h.log.WarnContext(ctx, "bad idempotency record", "key", key, "value", stored)
			key = ""
		}
	} else {
		key = ""
	}

	id, err := h.service.PlaceOrder(ctx, application.PlaceOrderRequest{
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		TotalAmount: req.TotalAmount,
		PaymentMode: domain.PaymentMode(req.PaymentMode),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if id == 0 {
		if key != "" {
			_ = h.idem.Release(context.WithoutCancel(ctx), key)
		}
		h.fail(w, r, err)
		return
	}

	// The order exists from here on, so the key is bound to it even when a
	// later step failed. A retry replays the id instead of ordering twice.
	if key != "" {
		if err := h.idem.Complete(context.WithoutCancel(ctx), key, strconv.FormatInt(id, 10)); err != nil {
			h.log.WarnContext(ctx, "idempotency result not stored", "order_id", id, "err", err)
		}
	}
	span.SetAttributes(attribute.Int64("order.id", id))

	if err != nil {
		ae := apperr.From(err)
		h.log.ErrorContext(ctx, "order created but not completed", "order_id", id, "err", err)
		writeJSON(w, ae.Status, placeFailure{
			Body:    apperr.Body{ErrorCode: ae.Code, ErrorMessage: ae.Message},
			OrderID: id,
		})
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrderDetails")
	defer span.End()

	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.Invalid("orderId must be an integer"))
		return
	}
	span.SetAttributes(attribute.Int64("order.id", id))

	view, err := h.service.GetOrderDetails(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResp{
		OrderID:     view.OrderID,
		OrderStatus: string(view.OrderStatus),
		OrderDate:   view.OrderDate,
		Amount:      json.Number(view.Amount.String()),
		ProductDetails: productDetails{
			ProductID:   view.ProductDetails.ProductID,
			ProductName: view.ProductDetails.ProductName,
		},
		PaymentDetails: paymentDetails{
			PaymentID:     view.PaymentDetails.PaymentID,
			PaymentStatus: view.PaymentDetails.PaymentStatus,
			PaymentDate:   view.PaymentDetails.PaymentDate,
			PaymentMode:   view.PaymentDetails.PaymentMode,
		},
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	if ae.Status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	apperr.Write(w, ae)
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
