package idempotency

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const Header = "Idempotency-Key"

const pending = "\x00pending"

// ErrInFlight is returned by Claim when another request holds the key but
// has not finished yet.
var ErrInFlight = errors.New("idempotent request still in flight")

// Store maps client supplied idempotency keys to the result of the first
// request that used them.
type Store struct {
	rdb   redis.Cmdable
	ttl   time.Duration
	scope string
}

func NewStore(rdb redis.Cmdable, scope string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, scope: scope}
}

func (s *Store) Key(key string) string {
	return fmt.Sprintf("idem:%s:%s", s.scope, key)
}

// FromRequest reads the idempotency header, "" when absent.
func FromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}

// Claim reserves key for the caller. When the key already holds a finished
// result it is returned with claimed=false.
func (s *Store) Claim(ctx context.Context, key string) (result string, claimed bool, err error) {
	ok, err := s.rdb.SetNX(ctx, s.Key(key), pending, s.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}

	v, err := s.rdb.Get(ctx, s.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; let the caller retry the claim
		return "", false, ErrInFlight
	}
	if err != nil {
		return "", false, err
	}
	if v == pending {
		return "", false, ErrInFlight
	}
	return v, false, nil
}

// Complete stores the result for a claimed key.
func (s *Store) Complete(ctx context.Context, key, result string) error {
	return s.rdb.Set(ctx, s.Key(key), result, s.ttl).Err()
}

// Release drops a claim whose request failed so the client may retry.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.Key(key)).Err()
}
