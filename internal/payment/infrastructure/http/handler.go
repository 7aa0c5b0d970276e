package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/order-fulfillment/internal/payment/application"
	"github.com/dmehra2102/order-fulfillment/internal/payment/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("payment-http"),
	}
}

type paymentReq struct {
	OrderID         int64           `json:"orderId"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber string          `json:"referenceNumber"`
	PaymentMode     string          `json:"paymentMode"`
}

type paymentResp struct {
	PaymentID       int64       `json:"paymentId"`
	OrderID         int64       `json:"orderId"`
	Amount          json.Number `json:"amount"`
	PaymentMode     string      `json:"paymentMode"`
	Status          string      `json:"status"`
	ReferenceNumber string      `json:"referenceNumber"`
	PaymentDate     time.Time   `json:"paymentDate"`
}

func (h *Handler) Routes(mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(mw...)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/payment", h.pay)
	r.Get("/payment/order/{orderId}", h.byOrder)
	return r
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DoPayment")
	defer span.End()

	var req paymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.Invalid("invalid body"))
		return
	}
	span.SetAttributes(attribute.Int64("order.id", req.OrderID))

	id, err := h.service.Pay(ctx, application.PayRequest{
		OrderID:         req.OrderID,
		Amount:          req.Amount,
		Mode:            domain.Mode(req.PaymentMode),
		ReferenceNumber: req.ReferenceNumber,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (h *Handler) byOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.Invalid("orderId must be an integer"))
		return
	}
	p, err := h.service.ByOrderID(r.Context(), orderID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResp{
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		Amount:          json.Number(p.Amount.String()),
		PaymentMode:     string(p.Mode),
		Status:          string(p.Status),
		ReferenceNumber: p.ReferenceNumber,
		PaymentDate:     p.PaymentDate,
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	if ae.Status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	apperr.Write(w, ae)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
