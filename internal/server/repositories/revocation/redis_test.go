package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLedger(t *testing.T, now time.Time) (*RedisLedger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLedger(client, WithClock(func() time.Time { return now })), mr
}

func TestRedisLedger_RecordAndDropPair(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l, mr := newRedisLedger(t, now)
	ctx := context.Background()

	p := Pairing{
		RefreshID:       "r-1",
		AccessID:        "a-1",
		AccessExpiresAt: now.Add(30 * time.Minute),
		ExpiresAt:       now.Add(7 * 24 * time.Hour),
	}
	require.NoError(t, l.Record(ctx, p))
	assert.Equal(t, 7*24*time.Hour, mr.TTL(pairKeyPrefix+"r-1"))

	got, err := l.DropPair(ctx, "r-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a-1", got.AccessID)
	assert.True(t, got.AccessExpiresAt.Equal(p.AccessExpiresAt))

	again, err := l.DropPair(ctx, "r-1")
	require.NoError(t, err)
	assert.Nil(t, again, "a pairing can be dropped only once")
}

func TestRedisLedger_RecordOverwrites(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l, _ := newRedisLedger(t, now)
	ctx := context.Background()

	base := Pairing{RefreshID: "r-1", AccessID: "a-1", AccessExpiresAt: now.Add(time.Minute), ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, l.Record(ctx, base))
	base.AccessID = "a-2"
	require.NoError(t, l.Record(ctx, base))

	got, err := l.DropPair(ctx, "r-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a-2", got.AccessID)
}

func TestRedisLedger_BlacklistExpires(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l, mr := newRedisLedger(t, now)
	ctx := context.Background()

	require.NoError(t, l.Blacklist(ctx, "a-1", now.Add(10*time.Minute)))

	revoked, err := l.IsBlacklisted(ctx, "a-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	other, err := l.IsBlacklisted(ctx, "a-2")
	require.NoError(t, err)
	assert.False(t, other)

	mr.FastForward(11 * time.Minute)

	revoked, err = l.IsBlacklisted(ctx, "a-1")
	require.NoError(t, err)
	assert.False(t, revoked, "blacklist entry must expire with the token")
}

func TestRedisLedger_ExpiredEntriesAreNotStored(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l, mr := newRedisLedger(t, now)
	ctx := context.Background()

	require.NoError(t, l.Blacklist(ctx, "a-old", now.Add(-time.Second)))
	require.NoError(t, l.Record(ctx, Pairing{RefreshID: "r-old", AccessID: "a", ExpiresAt: now}))

	assert.Empty(t, mr.Keys())
}

func TestRedisLedger_StoreDown(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l, mr := newRedisLedger(t, now)
	mr.Close()

	_, err := l.IsBlacklisted(context.Background(), "a-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis error")
}
