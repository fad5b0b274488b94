package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

type mongoCarts struct {
	collection *mongo.Collection
	now        func() time.Time
}

func (r *mongoCarts) FindByOwner(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("cart: %w", ErrNotFound)
	}

	var cart models.Cart
	if err := r.collection.FindOne(ctx, owner.Filter()).Decode(&cart); err != nil {
		return nil, notFound(err, "cart")
	}
	return &cart, nil
}

func (r *mongoCarts) Save(ctx context.Context, cart *models.Cart) error {
	now := r.now()

	if cart.ID.IsZero() {
		next := cart.Clone()
		next.ID = primitive.NewObjectID()
		next.Version = 1
		if next.CreatedAt.IsZero() {
			next.CreatedAt = now
		}
		next.UpdatedAt = now

		if _, err := r.collection.InsertOne(ctx, next); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("insert cart for %s: %w", cart.Owner.Key(), ErrVersionConflict)
			}
			return fmt.Errorf("insert cart: %w", err)
		}
		*cart = *next
		return nil
	}

	next := cart.Clone()
	next.Version = cart.Version + 1
	next.UpdatedAt = now

	filter := bson.M{"_id": cart.ID, "version": cart.Version}
	result, err := r.collection.ReplaceOne(ctx, filter, next)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("replace cart %s: %w", cart.ID.Hex(), ErrVersionConflict)
		}
		return fmt.Errorf("replace cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("replace cart %s at version %d: %w", cart.ID.Hex(), cart.Version, ErrVersionConflict)
	}

	*cart = *next
	return nil
}

func (r *mongoCarts) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("cart %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

func (r *mongoCarts) DeleteByOwner(ctx context.Context, owner models.CartOwner) error {
	if owner.IsZero() {
		return errors.New("delete cart: owner is empty")
	}

	result, err := r.collection.DeleteOne(ctx, owner.Filter())
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("cart for %s: %w", owner.Key(), ErrNotFound)
	}
	return nil
}
