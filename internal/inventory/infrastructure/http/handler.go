package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/application"
	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
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
		tracer:  otel.Tracer("inventory-http"),
	}
}

type productReq struct {
	Name     string          `json:"productName"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

type productResp struct {
	ProductID   int64       `json:"productId"`
	ProductName string      `json:"productName"`
	Price       json.Number `json:"price"`
	Quantity    int64       `json:"quantity"`
}

func (h *Handler) Routes(mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(mw...)

	r.Get("/health", health)
	r.Route("/product", func(r chi.Router) {
		r.Post("/", h.addProduct)
		r.Get("/{id}", h.getProduct)
		r.Put("/reduceQuantity/{id}", h.reduceQuantity)
	})
	return r
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddProduct")
	defer span.End()

	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.Invalid("invalid body"))
		return
	}

	id, err := h.service.AddProduct(ctx, domain.Product{Name: req.Name, Price: req.Price, Quantity: req.Quantity})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	span.SetAttributes(attribute.Int64("product.id", id))
	writeJSON(w, http.StatusOK, id)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productResp{
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       json.Number(p.Price.String()),
		Quantity:    p.Quantity,
	})
}

func (h *Handler) reduceQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ReduceQuantity")
	defer span.End()

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	qty, err := strconv.ParseInt(r.URL.Query().Get("quantity"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.Invalid("quantity must be an integer"))
		return
	}
	if err := h.service.Reserve(ctx, id, qty); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	if ae.Status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	apperr.Write(w, ae)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.Invalid("id must be an integer"))
		return 0, false
	}
	return id, true
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
