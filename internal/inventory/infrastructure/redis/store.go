// Package redis keeps inventory in Redis hashes. Reservations run as a Lua
// script so the check and the decrement happen in one server-side step.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
)

const (
	fieldName     = "name"
	fieldPrice    = "price"
	fieldQuantity = "quantity"
)

// reserveScript returns -1 for a missing product, 0 when stock is short and
// 1 once quantity has been taken.
var reserveScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

if redis.call('EXISTS', key) == 0 then
	return -1
end

local current = tonumber(redis.call('HGET', key, 'quantity'))
if current >= quantity then
	redis.call('HINCRBY', key, 'quantity', -quantity)
	return 1
end

return 0
`)

var releaseScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
return redis.call('HINCRBY', KEYS[1], 'quantity', ARGV[1])
`)

type Store struct {
	client redis.Cmdable
	prefix string
}

// NewStore keys products as "<prefix>product:<id>". An empty prefix is fine.
func NewStore(client redis.Cmdable, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(id int64) string {
	return s.prefix + "product:" + strconv.FormatInt(id, 10)
}

func (s *Store) Add(ctx context.Context, p domain.Product) (int64, error) {
	id, err := s.client.Incr(ctx, s.prefix+"product:seq").Result()
	if err != nil {
		return 0, fmt.Errorf("next product id: %w", err)
	}
	err = s.client.HSet(ctx, s.key(id),
		fieldName, p.Name,
		fieldPrice, p.Price.String(),
		fieldQuantity, p.Quantity,
	).Err()
	if err != nil {
		return 0, fmt.Errorf("store product: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id int64) (domain.Product, error) {
	vals, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return domain.Product{}, fmt.Errorf("load product: %w", err)
	}
	if len(vals) == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}

	p := domain.Product{ID: id, Name: vals[fieldName]}
	if p.Price, err = decimal.NewFromString(vals[fieldPrice]); err != nil {
		return domain.Product{}, fmt.Errorf("parse price: %w", err)
	}
	if p.Quantity, err = strconv.ParseInt(vals[fieldQuantity], 10, 64); err != nil {
		return domain.Product{}, fmt.Errorf("parse quantity: %w", err)
	}
	return p, nil
}

func (s *Store) Reserve(ctx context.Context, id, quantity int64) error {
	res, err := reserveScript.Run(ctx, s.client, []string{s.key(id)}, quantity).Int()
	if err != nil {
		return fmt.Errorf("reserve script: %w", err)
	}
	switch res {
	case 1:
		return nil
	case 0:
		return domain.ErrInsufficientQuantity
	case -1:
		return domain.ErrProductNotFound
	}
	return errors.New("reserve script: unexpected result " + strconv.Itoa(res))
}

func (s *Store) Release(ctx context.Context, id, quantity int64) error {
	res, err := releaseScript.Run(ctx, s.client, []string{s.key(id)}, quantity).Int64()
	if err != nil {
		return fmt.Errorf("release script: %w", err)
	}
	if res < 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
