package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// newTestClient 连接本地Redis（可用BOOKCATALOG_TEST_REDIS_ADDR指定），不可用时跳过
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("BOOKCATALOG_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15, DialTimeout: 200 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis不可用(%s): %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSessionStore_Session(t *testing.T) {
	client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()
	userID := uint(time.Now().UnixNano() % 1_000_000)
	t.Cleanup(func() { client.Del(ctx, sessionKey(userID)) })

	require.NoError(t, store.SaveSession(ctx, userID, map[string]interface{}{
		"email":    "alice@example.com",
		"login_at": 1700000000,
	}, time.Minute))

	session, err := store.GetSession(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", session["email"])
	assert.Equal(t, "1700000000", session["login_at"])

	ttl, err := client.TTL(ctx, sessionKey(userID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.DeleteSession(ctx, userID))
	_, err = store.GetSession(ctx, userID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSessionStore_Blacklist(t *testing.T) {
	client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()
	tokenID := fmt.Sprintf("test-%d", time.Now().UnixNano())
	t.Cleanup(func() { client.Del(ctx, blacklistKeyPrefix+tokenID) })

	revoked, err := store.IsInBlacklist(ctx, tokenID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.AddToBlacklist(ctx, tokenID, time.Minute))
	revoked, err = store.IsInBlacklist(ctx, tokenID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// 已过期的Token不需要加入黑名单
	require.NoError(t, store.AddToBlacklist(ctx, tokenID+"-expired", 0))
	revoked, err = store.IsInBlacklist(ctx, tokenID+"-expired")
	require.NoError(t, err)
	assert.False(t, revoked)
}
