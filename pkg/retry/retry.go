// Package retry envuelve llamadas salientes (NFe, ViaCEP, Stripe) con reintentos
// y backoff exponencial con jitter sobre cenkalti/backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy parámetros del backoff. Delay(n) = min(BaseDelay·Multiplier^(n-1), MaxDelay) ± Jitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      float64 // fracción del delay, 0.25 = ±25%

	// Timer se sustituye en tests; nil usa el timer real.
	Timer backoff.Timer
}

// DefaultPolicy 3 intentos, 500ms base, 10s tope, ×2, ±25%.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Multiplier:  2,
		Jitter:      0.25,
	}
}

// StatusError error HTTP de un servicio externo.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// nonRetryableStatus errores del cliente: reintentar no cambia el resultado.
var nonRetryableStatus = map[int]bool{
	400: true,
	401: true,
	403: true,
	404: true,
	409: true,
	422: true,
}

// Permanent marca err como no reintentable.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsRetryable decide si err amerita otro intento.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var p *backoff.PermanentError
	if errors.As(err, &p) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return !nonRetryableStatus[se.StatusCode]
	}
	return true
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	mult := p.Multiplier
	if mult < 1 {
		mult = 2
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.Multiplier = mult
	exp.RandomizationFactor = p.Jitter
	exp.MaxElapsedTime = 0
	if p.MaxDelay > 0 {
		exp.MaxInterval = p.MaxDelay
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Do ejecuta fn hasta que tenga éxito, devuelva un error no reintentable, se agoten
// los intentos o se cancele ctx. Devuelve el último error de fn.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := 0
	var last error
	op := func() error {
		attempts++
		err := fn(ctx)
		last = err
		if err != nil && !IsRetryable(err) {
			var perm *backoff.PermanentError
			if errors.As(err, &perm) {
				return err
			}
			return backoff.Permanent(err)
		}
		return err
	}
	err := backoff.RetryNotifyWithTimer(op, p.backOff(ctx), nil, p.Timer)
	if err != nil && ctx.Err() != nil && last != nil && !errors.Is(last, ctx.Err()) {
		return fmt.Errorf("retry: cancelado tras %d intentos: %w", attempts, last)
	}
	return err
}
