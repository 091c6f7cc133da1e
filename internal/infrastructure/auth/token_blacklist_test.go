package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t1tandr/uevent/internal/infrastructure/auth"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		ttl     time.Duration
		wait    time.Duration
		revoked bool
	}{
		{"live token is revoked", time.Hour, 0, true},
		{"entry lapses with the token", time.Millisecond, 10 * time.Millisecond, false},
		{"expired token is never stored", 0, 0, false},
		{"negative ttl is ignored", -time.Minute, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blacklist := auth.NewInMemoryTokenBlacklist()
			require.NoError(t, blacklist.AddToBlacklist(ctx, "jti", tt.ttl))
			time.Sleep(tt.wait)

			revoked, err := blacklist.IsBlacklisted(ctx, "jti")
			require.NoError(t, err)
			assert.Equal(t, tt.revoked, revoked)

			other, err := blacklist.IsBlacklisted(ctx, "other-jti")
			require.NoError(t, err)
			assert.False(t, other)
		})
	}
}

func TestInMemoryTokenBlacklist_Concurrent(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jti := string(rune('a' + i%26))
			_ = blacklist.AddToBlacklist(ctx, jti, time.Minute)
			_, _ = blacklist.IsBlacklisted(ctx, jti)
		}()
	}
	wg.Wait()

	revoked, err := blacklist.IsBlacklisted(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRedisTokenBlacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	blacklist := auth.NewRedisTokenBlacklist(client)
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "live", time.Minute))
	require.NoError(t, blacklist.AddToBlacklist(ctx, "dead", 0))
	require.NoError(t, blacklist.AddToBlacklist(ctx, "negative", -time.Minute))

	revoked, err := blacklist.IsBlacklisted(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Minute, mr.TTL("uevent:token:blacklist:live"))

	for _, jti := range []string{"dead", "negative", "unknown"} {
		revoked, err := blacklist.IsBlacklisted(ctx, jti)
		require.NoError(t, err)
		assert.False(t, revoked, jti)
	}

	mr.FastForward(2 * time.Minute)
	revoked, err = blacklist.IsBlacklisted(ctx, "live")
	require.NoError(t, err)
	assert.False(t, revoked, "entry lapses with the token")

	mr.Close()
	_, err = blacklist.IsBlacklisted(ctx, "live")
	assert.Error(t, err)
	assert.Error(t, blacklist.AddToBlacklist(ctx, "live", time.Minute))
}
