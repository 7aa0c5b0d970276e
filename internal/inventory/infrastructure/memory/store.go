// Package memory is a process-local inventory store for development and
// tests. A single mutex makes every reserve an indivisible check-and-take.
package memory

import (
	"context"
	"sync"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]domain.Product
}

func NewStore() *Store {
	return &Store{products: make(map[int64]domain.Product)}
}

func (s *Store) Add(_ context.Context, p domain.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.products[p.ID] = p
	return p.ID, nil
}

func (s *Store) Get(_ context.Context, id int64) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *Store) Reserve(_ context.Context, id, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	if p.Quantity < quantity {
		return domain.ErrInsufficientQuantity
	}
	p.Quantity -= quantity
	s.products[id] = p
	return nil
}

func (s *Store) Release(_ context.Context, id, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Quantity += quantity
	s.products[id] = p
	return nil
}
