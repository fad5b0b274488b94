package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CollectionCarts       = "carts"
	CollectionCheckouts   = "checkouts"
	CollectionOrders      = "orders"
	CollectionProducts    = "products"
	CollectionUsers       = "users"
	CollectionSubscribers = "subscribers"
)

// NewMongoStore wires every repository to db. With transactions enabled the
// Transactor opens a session per call, which needs a replica set.
func NewMongoStore(db *mongo.Database, transactions bool) *Store {
	var tx Transactor = Passthrough{}
	if transactions {
		tx = mongoTransactor{client: db.Client()}
	}

	return &Store{
		Carts:       &mongoCarts{collection: db.Collection(CollectionCarts), now: utcNow},
		Checkouts:   &mongoCheckouts{collection: db.Collection(CollectionCheckouts), now: utcNow},
		Orders:      &mongoOrders{collection: db.Collection(CollectionOrders), now: utcNow},
		Products:    &mongoProducts{collection: db.Collection(CollectionProducts), now: utcNow},
		Users:       &mongoUsers{collection: db.Collection(CollectionUsers), now: utcNow},
		Subscribers: &mongoSubscribers{collection: db.Collection(CollectionSubscribers), now: utcNow},
		Tx:          tx,
		Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
	}
}

func utcNow() time.Time { return time.Now().UTC() }

type mongoTransactor struct {
	client *mongo.Client
}

func (t mongoTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func (mongoTransactor) Atomic() bool { return true }

// notFound maps the driver's no-document error onto ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("find %s: %w", what, err)
}
