package memstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/repository"
)

type checkouts struct {
	db *DB
}

func (r *checkouts) Insert(_ context.Context, checkout *models.Checkout) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now()
	next := *checkout
	next.ID = primitive.NewObjectID()
	next.Version = 1
	next.CreatedAt = now
	next.UpdatedAt = now

	if err := r.db.put(r.db.checkouts, next.ID, "", next); err != nil {
		return err
	}
	*checkout = next
	return nil
}

func (r *checkouts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Checkout, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.find(id)
}

func (r *checkouts) find(id primitive.ObjectID) (*models.Checkout, error) {
	stored, ok := r.db.checkouts.rows[id]
	if !ok {
		return nil, fmt.Errorf("checkout %s: %w", id.Hex(), repository.ErrNotFound)
	}
	return decode[models.Checkout](stored)
}

func (r *checkouts) Save(_ context.Context, checkout *models.Checkout) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, err := r.find(checkout.ID)
	if err != nil {
		return fmt.Errorf("replace checkout %s: %w", checkout.ID.Hex(), repository.ErrVersionConflict)
	}
	if current.Version != checkout.Version {
		return fmt.Errorf("replace checkout %s at version %d: %w", checkout.ID.Hex(), checkout.Version, repository.ErrVersionConflict)
	}

	next := *checkout
	next.Version = checkout.Version + 1
	next.UpdatedAt = r.db.now()
	if err := r.db.put(r.db.checkouts, next.ID, "", next); err != nil {
		return err
	}
	*checkout = next
	return nil
}

func (r *checkouts) ClaimFinalize(_ context.Context, id primitive.ObjectID, at time.Time) (*models.Checkout, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, err := r.find(id)
	if err != nil || !current.IsPaid || current.IsFinalized {
		return nil, fmt.Errorf("claim checkout %s: %w", id.Hex(), repository.ErrVersionConflict)
	}

	current.IsFinalized = true
	current.FinalizedAt = &at
	current.UpdatedAt = r.db.now()
	current.Version++
	if err := r.db.put(r.db.checkouts, id, "", current); err != nil {
		return nil, err
	}
	return current, nil
}
