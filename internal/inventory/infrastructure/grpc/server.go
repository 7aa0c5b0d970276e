package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/application"
	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
	"github.com/dmehra2102/order-fulfillment/pkg/inventoryrpc"
	"github.com/dmehra2102/order-fulfillment/pkg/tracing"
)

type Server struct {
	log *slog.Logger
	svc *application.Service
}

func NewServer(log *slog.Logger, svc *application.Service) *Server {
	return &Server{log: log, svc: svc}
}

func (s *Server) Reserve(ctx context.Context, req *inventoryrpc.ReserveRequest) (*inventoryrpc.ReserveResponse, error) {
	if err := s.svc.Reserve(ctx, req.ProductID, req.Quantity); err != nil {
		return nil, toStatus(err)
	}
	return &inventoryrpc.ReserveResponse{}, nil
}

func (s *Server) GetProduct(ctx context.Context, req *inventoryrpc.GetProductRequest) (*inventoryrpc.Product, error) {
	p, err := s.svc.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &inventoryrpc.Product{
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.Price.String(),
		Quantity:    p.Quantity,
	}, nil
}

// toStatus keeps the error kind visible to the caller as a gRPC code.
func toStatus(err error) error {
	ae := apperr.From(err)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return status.Error(codes.NotFound, ae.Message)
	case errors.Is(err, apperr.ErrInsufficientQuantity):
		return status.Error(codes.FailedPrecondition, ae.Message)
	case errors.Is(err, apperr.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, ae.Message)
	default:
		return status.Error(codes.Internal, ae.Message)
	}
}

func NewGRPCServer(srv *Server) *grpc.Server {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(tracing.UnaryServerInterceptor("inventory-grpc")))
	inventoryrpc.RegisterInventoryServiceServer(gs, srv)
	return gs
}

func Run(log *slog.Logger, addr string, srv *Server) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := NewGRPCServer(srv)
	go func() {
		if err := gs.Serve(lis); err != nil {
			log.Error("grpc server stopped", "err", err)
		}
	}()
	return gs, nil
}
