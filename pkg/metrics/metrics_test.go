package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg, "test")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/order/{orderId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/order/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/order/{orderId}", "404")))
}

func TestPlacement_NilSafe(t *testing.T) {
	var p *Placement
	p.Order("placed")
	p.Reservation("ok")

	reg := prometheus.NewRegistry()
	p = NewPlacement(reg)
	p.Order("placed")
	p.Order("placed")
	p.Reservation("insufficient_quantity")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.Orders.WithLabelValues("placed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Reservations.WithLabelValues("insufficient_quantity")))
}
