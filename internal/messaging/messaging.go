// Package messaging defines how domain events leave the write path.
package messaging

import (
	"context"
	"errors"

	"github.com/maisonluxe/storefront/internal/entity"
)

// Publisher publishes a domain event to some transport.
type Publisher interface {
	Publish(ctx context.Context, event entity.Event) error
}

// Fanout publishes to every publisher in order and joins the failures.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, event entity.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
