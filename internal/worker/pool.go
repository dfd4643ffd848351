// Package worker ejecuta llamadas bloqueantes (DB, SMTP) en un pool acotado
// fuera del goroutine que atiende la request.
package worker

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"signup-auth/internal/apperr"
)

// Pool limita cuantas tareas bloqueantes corren a la vez.
type Pool struct {
	sem    *semaphore.Weighted
	logger *zap.Logger
}

func NewPool(size int, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), logger: logger}
}

// Do ejecuta fn en el pool y espera su resultado. Si ctx termina antes, el
// resultado se descarta; fn no se interrumpe y libera su slot al terminar.
func Do[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, apperr.Wrap(apperr.Generic("Could not complete the process"), err)
	}

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	taskCtx := context.WithoutCancel(ctx)

	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("worker task panicked", zap.Any("panic", r))
				done <- result{err: apperr.Process("Could not complete the process")}
			}
		}()
		val, err := fn(taskCtx)
		done <- result{val: val, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		p.logger.Warn("worker task abandoned", zap.Error(ctx.Err()))
		return zero, apperr.Wrap(apperr.Generic("Could not complete the process"), ctx.Err())
	}
}

// Run es Do para tareas sin valor de retorno.
func Run(ctx context.Context, p *Pool, fn func(context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
