package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/pkg/retry"
)

// recordingTimer dispara enseguida y anota cada espera pedida.
type recordingTimer struct {
	slept   *[]time.Duration
	c       chan time.Time
	onStart func()
}

func (r *recordingTimer) Start(d time.Duration) {
	*r.slept = append(*r.slept, d)
	if r.onStart != nil {
		r.onStart()
	}
	r.c <- time.Now()
}

func (r *recordingTimer) Stop()               {}
func (r *recordingTimer) C() <-chan time.Time { return r.c }

func testPolicy(slept *[]time.Duration) retry.Policy {
	p := retry.DefaultPolicy()
	p.Jitter = 0
	p.Timer = &recordingTimer{slept: slept, c: make(chan time.Time, 1)}
	return p
}

func TestDo_ExitoTrasReintentos(t *testing.T) {
	var slept []time.Duration
	calls := 0
	err := retry.Do(context.Background(), testPolicy(&slept), func(context.Context) error {
		calls++
		if calls < 3 {
			return &retry.StatusError{StatusCode: 503}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, slept)
}

func TestDo_NoReintentaErroresDeCliente(t *testing.T) {
	for _, code := range []int{400, 401, 403, 404, 409, 422} {
		var slept []time.Duration
		calls := 0
		err := retry.Do(context.Background(), testPolicy(&slept), func(context.Context) error {
			calls++
			return &retry.StatusError{StatusCode: code}
		})
		var se *retry.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, code, se.StatusCode)
		assert.Equal(t, 1, calls, "status %d no debe reintentarse", code)
		assert.Empty(t, slept)
	}
}

func TestDo_429SeReintenta(t *testing.T) {
	var slept []time.Duration
	calls := 0
	err := retry.Do(context.Background(), testPolicy(&slept), func(context.Context) error {
		calls++
		return &retry.StatusError{StatusCode: 429}
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, slept, 2)
}

func TestDo_Permanent(t *testing.T) {
	var slept []time.Duration
	sentinel := errors.New("payload inválido")
	calls := 0
	err := retry.Do(context.Background(), testPolicy(&slept), func(context.Context) error {
		calls++
		return retry.Permanent(sentinel)
	})
	assert.Same(t, sentinel, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var slept []time.Duration
	p := retry.DefaultPolicy()
	p.Timer = &recordingTimer{slept: &slept, c: make(chan time.Time, 1), onStart: cancel}
	netErr := errors.New("timeout de red")
	calls := 0
	err := retry.Do(ctx, p, func(context.Context) error {
		calls++
		return netErr
	})
	assert.ErrorIs(t, err, netErr)
	assert.LessOrEqual(t, calls, 2)
}

func TestDo_ContextoYaCanceladoNoReintenta(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var slept []time.Duration
	calls := 0
	err := retry.Do(ctx, testPolicy(&slept), func(ctx context.Context) error {
		calls++
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestDo_DelayConTope(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(&slept)
	p.MaxAttempts = 6
	p.BaseDelay = time.Second
	p.MaxDelay = 5 * time.Second
	err := retry.Do(context.Background(), p, func(context.Context) error {
		return &retry.StatusError{StatusCode: 502}
	})
	assert.Error(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}, slept)
}

func TestDo_JitterDentroDelRango(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(&slept)
	p.Jitter = 0.25
	p.MaxAttempts = 2
	p.BaseDelay = time.Second
	_ = retry.Do(context.Background(), p, func(context.Context) error { return errors.New("eof") })
	require.Len(t, slept, 1)
	assert.GreaterOrEqual(t, slept[0], 750*time.Millisecond)
	assert.LessOrEqual(t, slept[0], 1250*time.Millisecond)
}
