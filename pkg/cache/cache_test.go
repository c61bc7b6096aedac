package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache() (*Cache, *MemoryBackend, *clock) {
	clk := &clock{t: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	mem := NewMemoryBackend()
	mem.now = clk.now
	c := New(mem, zerolog.Nop())
	c.now = clk.now
	return c, mem, clk
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "erp:c1:products", BuildKey("c1", "products"))
	assert.Equal(t, "erp:c1:products:page=2:q", BuildKey("c1", "products", "page=2", "", "q"))
}

func TestPresets(t *testing.T) {
	assert.Equal(t, 30*time.Minute, Static.Stale)
	assert.Equal(t, 2*time.Hour, Static.GC)
	assert.Equal(t, 5*time.Minute, Standard.Stale)
	assert.Equal(t, 30*time.Minute, Standard.GC)
	assert.Equal(t, 30*time.Second, Dynamic.Stale)
	assert.Equal(t, 5*time.Minute, Dynamic.GC)
	assert.Zero(t, Realtime.Stale)
	assert.Equal(t, time.Minute, Realtime.GC)
}

func TestRemember_FrescoNoConsulta(t *testing.T) {
	c, _, clk := newTestCache()
	ctx := context.Background()
	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return map[string]int{"n": calls}, nil
	}

	var out map[string]int
	require.NoError(t, c.Remember(ctx, "k", Dynamic, &out, fetch))
	assert.Equal(t, 1, out["n"])

	clk.advance(10 * time.Second)
	require.NoError(t, c.Remember(ctx, "k", Dynamic, &out, fetch))
	assert.Equal(t, 1, out["n"])
	assert.Equal(t, 1, calls)

	clk.advance(30 * time.Second)
	require.NoError(t, c.Remember(ctx, "k", Dynamic, &out, fetch))
	assert.Equal(t, 2, out["n"], "vencido: se vuelve a consultar")
}

func TestRemember_VencidoSeSirveSiFalla(t *testing.T) {
	c, _, clk := newTestCache()
	ctx := context.Background()
	var out string
	require.NoError(t, c.Remember(ctx, "k", Dynamic, &out, func(context.Context) (any, error) { return "v1", nil }))

	clk.advance(time.Minute)
	err := c.Remember(ctx, "k", Dynamic, &out, func(context.Context) (any, error) { return nil, errors.New("db caída") })
	require.NoError(t, err)
	assert.Equal(t, "v1", out)
}

func TestRemember_SinEntradaPropagaError(t *testing.T) {
	c, _, _ := newTestCache()
	var out string
	err := c.Remember(context.Background(), "k", Standard, &out, func(context.Context) (any, error) { return nil, errors.New("boom") })
	assert.EqualError(t, err, "boom")
}

func TestRemember_GCDescartaEntrada(t *testing.T) {
	c, mem, clk := newTestCache()
	var out string
	require.NoError(t, c.Remember(context.Background(), "k", Realtime, &out, func(context.Context) (any, error) { return "v", nil }))
	assert.Equal(t, 1, mem.Len())
	clk.advance(2 * time.Minute)
	_, ok, _ := mem.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestRemember_DeduplicaConcurrentes(t *testing.T) {
	c, _, _ := newTestCache()
	var calls int32
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Remember(context.Background(), "same", Standard, &results[i], fetch)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestInvalidateMatching(t *testing.T) {
	c, mem, _ := newTestCache()
	ctx := context.Background()
	for _, k := range []string{BuildKey("c1", "products"), BuildKey("c1", "products", "p2"), BuildKey("c1", "sales"), BuildKey("c2", "products")} {
		require.NoError(t, mem.Set(ctx, k, []byte(`{}`), time.Hour))
	}

	n, err := c.InvalidateMatching(ctx, "c1:products")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, mem.Len())

	_, err = c.InvalidateMatching(ctx, "")
	assert.Error(t, err)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `erp:c1:a\*b\?`, escapeGlob("erp:c1:a*b?"))
}

func TestRemember_CancelarAlPrimeroNoAbortaLaConsultaCompartida(t *testing.T) {
	c, _, _ := newTestCache()
	ctx1, cancel := context.WithCancel(context.Background())
	started, release := make(chan struct{}), make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return "ok", nil
	}

	var wg sync.WaitGroup
	var err1, err2 error
	var out1, out2 string
	wg.Add(1)
	go func() {
		defer wg.Done()
		err1 = c.Remember(ctx1, "k", Dynamic, &out1, fetch)
	}()
	<-started
	cancel()
	wg.Add(1)
	go func() {
		defer wg.Done()
		err2 = c.Remember(context.Background(), "k", Dynamic, &out2, func(context.Context) (any, error) {
			return "segunda consulta", nil
		})
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, err1)
	assert.Equal(t, "ok", out1)
	require.NoError(t, err2)
	assert.Equal(t, "ok", out2)
}
