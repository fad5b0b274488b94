// Package cache keeps read copies of carts keyed by owner.
package cache

import (
	"context"
	"errors"

	"storefront/internal/models"
)

var ErrCacheMiss = errors.New("cache miss")

type CartCache interface {
	Get(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	Set(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, owner models.CartOwner) error
}

// Noop always misses. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, models.CartOwner) (*models.Cart, error) { return nil, ErrCacheMiss }
func (Noop) Set(context.Context, *models.Cart) error                     { return nil }
func (Noop) Delete(context.Context, models.CartOwner) error              { return nil }
