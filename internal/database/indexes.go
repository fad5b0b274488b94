package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var log = logrus.WithField("area", "database")

// EnsureIndexes creates every index the repositories rely on. The unique
// ones back the one-cart-per-owner and one-order-per-checkout rules.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		collection string
		models     []mongo.IndexModel
	}{
		{"carts", cartIndexes()},
		{"checkouts", checkoutIndexes()},
		{"orders", orderIndexes()},
		{"products", productIndexes()},
		{"users", userIndexes()},
		{"subscribers", subscriberIndexes()},
	}

	for _, step := range steps {
		if err := ensure(ctx, db.Collection(step.collection), step.models); err != nil {
			return err
		}
	}
	return nil
}

func ensure(ctx context.Context, collection *mongo.Collection, models []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	names, err := collection.Indexes().CreateMany(ctx, models)
	if err != nil {
		log.WithField("collection", collection.Name()).WithError(err).Error("index creation failed")
		return fmt.Errorf("create %s indexes: %w", collection.Name(), err)
	}
	log.WithFields(logrus.Fields{"collection": collection.Name(), "indexes": names}).Info("indexes ensured")
	return nil
}

func cartIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user", Value: 1}},
			Options: options.Index().
				SetName("user_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"user": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "guestId", Value: 1}},
			Options: options.Index().
				SetName("guestId_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"guestId": bson.M{"$type": "string"}}),
		},
	}
}

func checkoutIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_createdAt"),
		},
	}
}

func orderIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_createdAt"),
		},
		{
			Keys: bson.D{{Key: "checkout", Value: 1}},
			Options: options.Index().
				SetName("checkout_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"checkout": bson.M{"$exists": true}}),
		},
	}
}

func productIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().
				SetName("sku_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"sku": bson.M{"$type": "string", "$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "isPublished", Value: 1}, {Key: "category", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("published_category"),
		},
	}
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	}
}

func subscriberIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	}
}
