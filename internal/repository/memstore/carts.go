package memstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/repository"
)

type carts struct {
	db *DB
}

func (r *carts) FindByOwner(_ context.Context, owner models.CartOwner) (*models.Cart, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if owner.IsZero() {
		return nil, fmt.Errorf("cart: %w", repository.ErrNotFound)
	}
	found, ok := r.db.carts.lookup(owner.Key())
	if !ok {
		return nil, fmt.Errorf("cart for %s: %w", owner.Key(), repository.ErrNotFound)
	}
	return decode[models.Cart](found)
}

func (r *carts) Save(_ context.Context, cart *models.Cart) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if cart.Owner.IsZero() {
		return models.ErrCartWithoutOwner
	}

	now := r.db.now()
	next := cart.Clone()
	next.UpdatedAt = now

	if cart.ID.IsZero() {
		next.ID = primitive.NewObjectID()
		next.Version = 1
		if next.CreatedAt.IsZero() {
			next.CreatedAt = now
		}
	} else {
		stored, ok := r.db.carts.rows[cart.ID]
		if !ok {
			return fmt.Errorf("replace cart %s: %w", cart.ID.Hex(), repository.ErrVersionConflict)
		}
		current, err := decode[models.Cart](stored)
		if err != nil {
			return err
		}
		if current.Version != cart.Version {
			return fmt.Errorf("replace cart %s at version %d: %w", cart.ID.Hex(), cart.Version, repository.ErrVersionConflict)
		}
		next.Version = cart.Version + 1
	}

	if err := r.db.put(r.db.carts, next.ID, next.Owner.Key(), next); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("save cart for %s: %w", next.Owner.Key(), repository.ErrVersionConflict)
		}
		return err
	}
	*cart = *next
	return nil
}

func (r *carts) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if !r.db.carts.remove(id) {
		return fmt.Errorf("cart %s: %w", id.Hex(), repository.ErrNotFound)
	}
	return nil
}

func (r *carts) DeleteByOwner(_ context.Context, owner models.CartOwner) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if owner.IsZero() {
		return errors.New("delete cart: owner is empty")
	}
	id, ok := r.db.carts.unique[owner.Key()]
	if !ok {
		return fmt.Errorf("cart for %s: %w", owner.Key(), repository.ErrNotFound)
	}
	r.db.carts.remove(id)
	return nil
}
