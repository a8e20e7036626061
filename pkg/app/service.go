package app

import (
	"context"
)

// Service is anything App can supervise: a blocking loop that returns when
// ctx is cancelled or it hits a fatal error of its own.
type Service interface {
	Run(ctx context.Context) error
}

func actor(ctx context.Context, service Service) (func() error, func(err error)) {
	ctx, cancel := context.WithCancelCause(ctx)

	return func() error {
			return service.Run(ctx)
		}, func(err error) {
			cancel(err)
		}
}
