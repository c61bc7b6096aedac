package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBackend(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rb := NewRedisBackendWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rb.Close() })
	return rb, mr
}

func TestRedisBackend_GetSetTTL(t *testing.T) {
	rb, mr := newRedisBackend(t)
	ctx := context.Background()

	_, ok, err := rb.Get(ctx, "erp:c1:products")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rb.Set(ctx, "erp:c1:products", []byte(`{"n":1}`), time.Minute))
	got, ok, err := rb.Get(ctx, "erp:c1:products")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"n":1}`, string(got))

	mr.FastForward(2 * time.Minute)
	_, ok, err = rb.Get(ctx, "erp:c1:products")
	require.NoError(t, err)
	assert.False(t, ok, "la entrada vence con el TTL")

	require.NoError(t, rb.Delete(ctx))
}

func TestRedisBackend_DeleteMatchingPorLotes(t *testing.T) {
	rb, mr := newRedisBackend(t)
	ctx := context.Background()
	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set(BuildKey("c1", "products", fmt.Sprintf("page=%d", i)), "{}"))
	}
	require.NoError(t, mr.Set(BuildKey("c2", "products"), "{}"))
	require.NoError(t, mr.Set(BuildKey("c1", "sales"), "{}"))

	n, err := rb.DeleteMatching(ctx, "c1:products")
	require.NoError(t, err)
	assert.Equal(t, 250, n, "más de un lote de SCAN")
	assert.True(t, mr.Exists(BuildKey("c2", "products")))
	assert.True(t, mr.Exists(BuildKey("c1", "sales")))
	assert.Len(t, mr.Keys(), 2)
}

func TestRedisBackend_DeleteMatchingAsteriscoLiteral(t *testing.T) {
	rb, mr := newRedisBackend(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("erp:c1:products:q=*promo", "{}"))
	require.NoError(t, mr.Set("erp:c1:products:q=xpromo", "{}"))

	n, err := rb.DeleteMatching(ctx, "q=*promo")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, mr.Exists("erp:c1:products:q=*promo"))
	assert.True(t, mr.Exists("erp:c1:products:q=xpromo"), "el * del patrón no es comodín")
}

func TestRedisBackend_ConCache(t *testing.T) {
	rb, mr := newRedisBackend(t)
	c := New(rb, zerolog.Nop())
	ctx := context.Background()
	key := BuildKey("c1", "dashboard")

	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}
	var out int
	require.NoError(t, c.Remember(ctx, key, Standard, &out, fetch))
	require.NoError(t, c.Remember(ctx, key, Standard, &out, fetch))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 30*time.Minute, mr.TTL(key))

	c.InvalidateCompany(ctx, "c1", "dashboard")
	assert.False(t, mr.Exists(key))
}

func TestNewRedisBackend_SinServidor(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := NewRedisBackend(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
