package grpc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/dmehra2102/order-fulfillment/internal/order/application"
	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
	"github.com/dmehra2102/order-fulfillment/pkg/inventoryrpc"
	"github.com/dmehra2102/order-fulfillment/pkg/tracing"
)

type InventoryClient struct {
	log  *slog.Logger
	conn *grpc.ClientConn
	cc   *inventoryrpc.InventoryServiceClient
}

func NewInventoryClient(log *slog.Logger, addr string, opts ...grpc.DialOption) (*InventoryClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(tracing.UnaryClientInterceptor()),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &InventoryClient{
		log:  log,
		conn: conn,
		cc:   inventoryrpc.NewInventoryServiceClient(conn),
	}, nil
}

func (c *InventoryClient) Close() error { return c.conn.Close() }

func (c *InventoryClient) Reserve(ctx context.Context, productID, quantity int64) error {
	_, err := c.cc.Reserve(ctx, &inventoryrpc.ReserveRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return fromStatus(err)
	}
	return nil
}

func (c *InventoryClient) Product(ctx context.Context, productID int64) (application.ProductSnapshot, error) {
	p, err := c.cc.GetProduct(ctx, &inventoryrpc.GetProductRequest{ProductID: productID})
	if err != nil {
		return application.ProductSnapshot{}, fromStatus(err)
	}
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return application.ProductSnapshot{}, apperr.Upstream("inventory returned a bad price", fmt.Errorf("price %q: %w", p.Price, err))
	}
	return application.ProductSnapshot{
		ProductID:   p.ProductID,
		ProductName: p.ProductName,
		Price:       price,
		Quantity:    p.Quantity,
	}, nil
}

// fromStatus turns gRPC codes back into error kinds. Anything that is not a
// business rejection means the inventory service could not be reached.
func fromStatus(err error) error {
	st := status.Convert(err)
	switch st.Code() {
	case codes.NotFound:
		return apperr.NotFound("PRODUCT_NOT_FOUND", st.Message())
	case codes.FailedPrecondition:
		return apperr.InsufficientQuantity(st.Message())
	case codes.InvalidArgument:
		return apperr.Invalid(st.Message())
	default:
		return apperr.Upstream("inventory service unavailable", err)
	}
}
