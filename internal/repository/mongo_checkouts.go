package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

type mongoCheckouts struct {
	collection *mongo.Collection
	now        func() time.Time
}

func (r *mongoCheckouts) Insert(ctx context.Context, checkout *models.Checkout) error {
	now := r.now()
	checkout.ID = primitive.NewObjectID()
	checkout.Version = 1
	checkout.CreatedAt = now
	checkout.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, checkout); err != nil {
		checkout.ID = primitive.NilObjectID
		return fmt.Errorf("insert checkout: %w", err)
	}
	return nil
}

func (r *mongoCheckouts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Checkout, error) {
	var checkout models.Checkout
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&checkout); err != nil {
		return nil, notFound(err, "checkout")
	}
	return &checkout, nil
}

func (r *mongoCheckouts) Save(ctx context.Context, checkout *models.Checkout) error {
	expected := checkout.Version
	next := *checkout
	next.Version = expected + 1
	next.UpdatedAt = r.now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": checkout.ID, "version": expected}, next)
	if err != nil {
		return fmt.Errorf("replace checkout: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("replace checkout %s at version %d: %w", checkout.ID.Hex(), expected, ErrVersionConflict)
	}

	*checkout = next
	return nil
}

func (r *mongoCheckouts) ClaimFinalize(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Checkout, error) {
	filter := bson.M{"_id": id, "isPaid": true, "isFinalized": false}
	update := bson.M{
		"$set": bson.M{"isFinalized": true, "finalizedAt": at, "updatedAt": r.now()},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var checkout models.Checkout
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&checkout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("claim checkout %s: %w", id.Hex(), ErrVersionConflict)
		}
		return nil, fmt.Errorf("claim checkout: %w", err)
	}
	return &checkout, nil
}
