package inventoryrpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubServer struct {
	reserved []ReserveRequest
}

func (s *stubServer) Reserve(_ context.Context, in *ReserveRequest) (*ReserveResponse, error) {
	if in.Quantity > 5 {
		return nil, status.Error(codes.FailedPrecondition, "insufficient quantity")
	}
	s.reserved = append(s.reserved, *in)
	return &ReserveResponse{}, nil
}

func (s *stubServer) GetProduct(_ context.Context, in *GetProductRequest) (*Product, error) {
	return &Product{ProductID: in.ProductID, ProductName: "iPhone", Price: "100", Quantity: 200}, nil
}

func dial(t *testing.T, srv InventoryServiceServer, opts ...grpc.ServerOption) *InventoryServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(opts...)
	RegisterInventoryServiceServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewInventoryServiceClient(conn)
}

func TestRoundTrip(t *testing.T) {
	stub := &stubServer{}
	client := dial(t, stub)
	ctx := context.Background()

	_, err := client.Reserve(ctx, &ReserveRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, []ReserveRequest{{ProductID: 1, Quantity: 2}}, stub.reserved)

	_, err = client.Reserve(ctx, &ReserveRequest{ProductID: 1, Quantity: 9})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	p, err := client.GetProduct(ctx, &GetProductRequest{ProductID: 3})
	require.NoError(t, err)
	assert.Equal(t, &Product{ProductID: 3, ProductName: "iPhone", Price: "100", Quantity: 200}, p)
}

func TestInterceptorSeesFullMethod(t *testing.T) {
	var methods []string
	intercept := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		methods = append(methods, info.FullMethod)
		return handler(ctx, req)
	}
	client := dial(t, &stubServer{}, grpc.UnaryInterceptor(intercept))

	_, err := client.GetProduct(context.Background(), &GetProductRequest{ProductID: 1})
	require.NoError(t, err)
	_, err = client.Reserve(context.Background(), &ReserveRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{GetProductMethod, ReserveMethod}, methods)
}
