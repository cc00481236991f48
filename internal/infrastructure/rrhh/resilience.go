package rrhh

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/viaticos-api/internal/domain"
)

// Options resiliencia de las consultas a RRHH.
type Options struct {
	BreakerMaxFailures uint32        // fallos consecutivos que abren el breaker
	OpenTimeout        time.Duration // tiempo abierto antes de probar de nuevo
	RetryAttempts      uint
	RetryDelay         time.Duration
	Log                zerolog.Logger
}

// DefaultOptions valores de producción.
func DefaultOptions(maxFailures, attempts int, log zerolog.Logger) Options {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if attempts <= 0 {
		attempts = 1
	}
	return Options{
		BreakerMaxFailures: uint32(maxFailures),
		OpenTimeout:        30 * time.Second,
		RetryAttempts:      uint(attempts),
		RetryDelay:         100 * time.Millisecond,
		Log:                log,
	}
}

// guard breaker por fuera, reintentos por dentro: una llamada lógica cuenta una sola vez para el breaker.
// Solo se usa con lecturas; las consultas a RRHH son idempotentes.
type guard struct {
	cb       *gobreaker.CircuitBreaker
	attempts uint
	delay    time.Duration
}

func newGuard(opts Options) *guard {
	log := opts.Log
	max := opts.BreakerMaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "rrhh",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= max
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del breaker de RRHH")
		},
		// La cancelación del cliente no indica que RRHH esté caído.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	attempts := opts.RetryAttempts
	if attempts == 0 {
		attempts = 1
	}
	return &guard{cb: cb, attempts: attempts, delay: opts.RetryDelay}
}

// do ejecuta fn; cualquier fallo sale como ErrStorageUnavailable con la causa envuelta.
func (g *guard) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(g.attempts),
			retry.Delay(g.delay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				return ctx.Err() == nil
			}),
		)
		return nil, r.Do(func() error { return fn(ctx) })
	})
	if err != nil {
		return domain.StorageUnavailable(op, err)
	}
	return nil
}

// state estado del breaker, para health.
func (g *guard) state() gobreaker.State {
	return g.cb.State()
}
