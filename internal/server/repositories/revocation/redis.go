package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/codec"
	"github.com/redis/go-redis/v9"
)

const (
	pairKeyPrefix    = "ledger:pair:"
	revokedKeyPrefix = "ledger:revoked:"
)

// RedisLedger keeps pairings as CBOR values and revocations as marker keys,
// both with a Redis TTL equal to the remaining lifetime of the token.
type RedisLedger struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisLedger(client redis.UniversalClient, opts ...Option) *RedisLedger {
	o := buildOptions(opts)
	return &RedisLedger{client: client, now: o.now}
}

func (l *RedisLedger) Record(ctx context.Context, p Pairing) error {
	ttl := p.ExpiresAt.Sub(l.now())
	if ttl <= 0 {
		return nil
	}

	value, err := codec.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pairing: %w", err)
	}

	if err := l.client.Set(ctx, pairKeyPrefix+p.RefreshID, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (l *RedisLedger) Blacklist(ctx context.Context, accessID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(l.now())
	if ttl <= 0 {
		return nil
	}

	if err := l.client.Set(ctx, revokedKeyPrefix+accessID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (l *RedisLedger) IsBlacklisted(ctx context.Context, accessID string) (bool, error) {
	n, err := l.client.Exists(ctx, revokedKeyPrefix+accessID).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n > 0, nil
}

func (l *RedisLedger) DropPair(ctx context.Context, refreshID string) (*Pairing, error) {
	value, err := l.client.GetDel(ctx, pairKeyPrefix+refreshID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var p Pairing
	if err := codec.Unmarshal(value, &p); err != nil {
		return nil, fmt.Errorf("decode pairing: %w", err)
	}
	return &p, nil
}
