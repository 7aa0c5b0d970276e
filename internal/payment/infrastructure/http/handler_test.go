package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment/internal/payment/application"
	"github.com/dmehra2102/order-fulfillment/internal/payment/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
	"github.com/dmehra2102/order-fulfillment/pkg/logging"
)

type memRepo struct {
	mu      sync.Mutex
	byOrder map[int64]domain.Payment
}

func (r *memRepo) Create(_ context.Context, p domain.Payment) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byOrder[p.OrderID]; ok {
		return 0, domain.ErrAlreadyPaid
	}
	p.ID = int64(len(r.byOrder) + 1)
	r.byOrder[p.OrderID] = p
	return p.ID, nil
}

func (r *memRepo) FindByOrderID(_ context.Context, orderID int64) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byOrder[orderID]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return p, nil
}

func newServer(t *testing.T) *httptest.Server {
	svc := application.NewService(logging.Discard(), &memRepo{byOrder: map[int64]domain.Payment{}})
	srv := httptest.NewServer(NewHandler(logging.Discard(), svc).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func decodeError(t *testing.T, resp *http.Response) apperr.Body {
	t.Helper()
	var body apperr.Body
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestPaymentFlow(t *testing.T) {
	srv := newServer(t)
	body := `{"orderId":12,"amount":"75.25","referenceNumber":"ref-12","paymentMode":"CREDIT_CARD"}`

	resp, err := http.Post(srv.URL+"/payment", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var id int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&id))
	assert.EqualValues(t, 1, id)

	dup, err := http.Post(srv.URL+"/payment", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer dup.Body.Close()
	assert.Equal(t, http.StatusConflict, dup.StatusCode)
	assert.Equal(t, "PAYMENT_EXISTS", decodeError(t, dup).ErrorCode)

	got, err := http.Get(srv.URL + "/payment/order/12")
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)
	var p paymentResp
	require.NoError(t, json.NewDecoder(got.Body).Decode(&p))
	assert.EqualValues(t, 1, p.PaymentID)
	assert.Equal(t, json.Number("75.25"), p.Amount)
	assert.Equal(t, "CREDIT_CARD", p.PaymentMode)
	assert.Equal(t, "SUCCESS", p.Status)
	assert.Equal(t, "ref-12", p.ReferenceNumber)
}

func TestPaymentErrors(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/payment/order/5")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PAYMENT_NOT_FOUND", decodeError(t, resp).ErrorCode)

	bad, err := http.Post(srv.URL+"/payment", "application/json", strings.NewReader(`{"orderId":1,"amount":1,"paymentMode":"SHELLS"}`))
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, bad).ErrorCode)
}
