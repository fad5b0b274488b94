package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

type mongoProducts struct {
	collection *mongo.Collection
	now        func() time.Time
}

func (r *mongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, notFound(err, "product")
	}
	return &product, nil
}

func (r *mongoProducts) List(ctx context.Context, filter ProductFilter, page Page) ([]models.Product, int64, error) {
	query := productQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().SetSort(productSort(filter.Sort))
	if page.Limit > 0 {
		opts.SetSkip(page.Skip()).SetLimit(page.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, total, nil
}

func productQuery(filter ProductFilter) bson.M {
	query := bson.M{}
	if filter.PublishedOnly {
		query["isPublished"] = true
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Collection != "" {
		query["collections"] = filter.Collection
	}
	if filter.Gender != "" {
		query["gender"] = filter.Gender
	}
	if filter.Brand != "" {
		query["brand"] = filter.Brand
	}
	if filter.Size != "" {
		query["sizes"] = bson.M{"$in": []string{filter.Size}}
	}
	if filter.Color != "" {
		query["colors"] = bson.M{"$in": []string{filter.Color}}
	}

	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return query
}

func productSort(sort string) bson.D {
	switch sort {
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}

func (r *mongoProducts) Insert(ctx context.Context, product *models.Product) error {
	now := r.now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		product.ID = primitive.NilObjectID
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product sku %q: %w", product.SKU, ErrDuplicate)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *mongoProducts) Replace(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = r.now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product sku %q: %w", product.SKU, ErrDuplicate)
		}
		return fmt.Errorf("replace product: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", product.ID.Hex(), ErrNotFound)
	}
	return nil
}

func (r *mongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("product %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

type mongoUsers struct {
	collection *mongo.Collection
	now        func() time.Time
}

func (r *mongoUsers) Insert(ctx context.Context, user *models.User) error {
	now := r.now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		user.ID = primitive.NilObjectID
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

type mongoSubscribers struct {
	collection *mongo.Collection
	now        func() time.Time
}

func (r *mongoSubscribers) Insert(ctx context.Context, subscriber *models.Subscriber) error {
	subscriber.ID = primitive.NewObjectID()
	if subscriber.SubscribedAt.IsZero() {
		subscriber.SubscribedAt = r.now()
	}

	if _, err := r.collection.InsertOne(ctx, subscriber); err != nil {
		subscriber.ID = primitive.NilObjectID
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("subscriber %s: %w", subscriber.Email, ErrDuplicate)
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (r *mongoSubscribers) List(ctx context.Context) ([]models.Subscriber, error) {
	opts := options.Find().SetSort(bson.D{{Key: "subscribedAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find subscribers: %w", err)
	}
	defer cursor.Close(ctx)

	subscribers := []models.Subscriber{}
	if err := cursor.All(ctx, &subscribers); err != nil {
		return nil, fmt.Errorf("decode subscribers: %w", err)
	}
	return subscribers, nil
}
