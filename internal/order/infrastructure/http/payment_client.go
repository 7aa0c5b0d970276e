package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmehra2102/order-fulfillment/internal/order/application"
	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
)

// PaymentClient calls the payment service over HTTP.
type PaymentClient struct {
	baseURL string
	http    *http.Client
}

func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type paymentReq struct {
	OrderID         int64           `json:"orderId"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber string          `json:"referenceNumber"`
	PaymentMode     string          `json:"paymentMode"`
}

type paymentResp struct {
	PaymentID       int64           `json:"paymentId"`
	OrderID         int64           `json:"orderId"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMode     string          `json:"paymentMode"`
	Status          string          `json:"status"`
	ReferenceNumber string          `json:"referenceNumber"`
	PaymentDate     time.Time       `json:"paymentDate"`
}

func (c *PaymentClient) Pay(ctx context.Context, req application.PaymentRequest) (int64, error) {
	body, err := json.Marshal(paymentReq{
		OrderID:         req.OrderID,
		Amount:          req.Amount,
		ReferenceNumber: req.ReferenceNumber,
		PaymentMode:     string(req.Mode),
	})
	if err != nil {
		return 0, err
	}

	var id int64
	if err := c.do(ctx, http.MethodPost, "/payment", body, &id); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *PaymentClient) ByOrderID(ctx context.Context, orderID int64) (application.PaymentSnapshot, error) {
	var resp paymentResp
	if err := c.do(ctx, http.MethodGet, "/payment/order/"+strconv.FormatInt(orderID, 10), nil, &resp); err != nil {
		return application.PaymentSnapshot{}, err
	}
	return application.PaymentSnapshot{
		PaymentID:       resp.PaymentID,
		OrderID:         resp.OrderID,
		Amount:          resp.Amount,
		Mode:            resp.PaymentMode,
		Status:          resp.Status,
		ReferenceNumber: resp.ReferenceNumber,
		PaymentDate:     resp.PaymentDate,
	}, nil
}

func (c *PaymentClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Upstream("payment service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var eb apperr.Body
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if resp.StatusCode == http.StatusNotFound {
			return apperr.NotFound(eb.ErrorCode, eb.ErrorMessage)
		}
		return apperr.Upstream("payment service error",
			fmt.Errorf("%s %s: status %d: %s %s", method, path, resp.StatusCode, eb.ErrorCode, eb.ErrorMessage))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
