package provider

import (
	"context"

	"github.com/firefly-engineering/snapbox/internal/errors"
	"github.com/firefly-engineering/snapbox/internal/logging"
)

// Lifecycle is a resource with paired create and destroy steps
type Lifecycle interface {
	Create(ctx context.Context) error
	Destroy(ctx context.Context) error
}

// Acquire creates lc, runs body, and always destroys lc afterwards.
// The first error (from Create, the context or body) is returned once
// Destroy has finished; a Destroy error is joined to it. A panic in body is
// re-raised after Destroy.
func Acquire(ctx context.Context, lc Lifecycle, body func(ctx context.Context) error) (err error) {
	defer func() {
		r := recover()

		if derr := lc.Destroy(context.WithoutCancel(ctx)); derr != nil {
			logging.Warn("failed to destroy instance", "error", derr)
			err = errors.Join(err, derr)
		}

		if r != nil {
			panic(r)
		}
	}()

	if err := lc.Create(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return body(ctx)
}

// Acquire runs body with the provider's instance, destroying it afterwards
func (p *Provider) Acquire(ctx context.Context, body func(ctx context.Context) error) error {
	return Acquire(ctx, p, body)
}
