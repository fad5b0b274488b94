// Package repository persists carts, checkouts, orders and the catalog.
// Implementations return the sentinel errors below, wrapped with %w.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrVersionConflict = errors.New("document was modified concurrently")
	ErrDuplicate       = errors.New("duplicate key")
)

// CartRepository stores one cart per owner. Save inserts carts without an id
// with version 1 and otherwise replaces the document only when the stored
// version still equals cart.Version.
type CartRepository interface {
	FindByOwner(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByOwner(ctx context.Context, owner models.CartOwner) error
}

type CheckoutRepository interface {
	Insert(ctx context.Context, checkout *models.Checkout) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Checkout, error)
	Save(ctx context.Context, checkout *models.Checkout) error
	// ClaimFinalize flips a paid, unfinalized checkout to finalized in one
	// step. ErrVersionConflict means the checkout was not in that state.
	ClaimFinalize(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Checkout, error)
}

type OrderRepository interface {
	// Insert fails with ErrDuplicate when an order already exists for the
	// same checkout.
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context, page Page) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter, page Page) ([]models.Product, int64, error)
	Insert(ctx context.Context, product *models.Product) error
	Replace(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type SubscriberRepository interface {
	Insert(ctx context.Context, subscriber *models.Subscriber) error
	List(ctx context.Context) ([]models.Subscriber, error)
}

// Transactor runs fn so that the writes it makes through the context it is
// handed commit together. Atomic reports false for implementations that
// simply call fn, where a failure can leave earlier writes in place.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}

// Passthrough is the Transactor used when transactions are disabled.
type Passthrough struct{}

func (Passthrough) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (Passthrough) Atomic() bool { return false }

// Store bundles every repository of one backend.
type Store struct {
	Carts       CartRepository
	Checkouts   CheckoutRepository
	Orders      OrderRepository
	Products    ProductRepository
	Users       UserRepository
	Subscribers SubscriberRepository
	Tx          Transactor
	Ping        func(ctx context.Context) error
}

// Page selects a window of a sorted result. A zero Limit means everything.
type Page struct {
	Page  int64
	Limit int64
}

func (p Page) Skip() int64 {
	if p.Limit <= 0 || p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

const (
	SortNewest    = "newest"
	SortPriceAsc  = "priceAsc"
	SortPriceDesc = "priceDesc"
)

// ProductFilter narrows catalog listings. Empty fields match everything.
type ProductFilter struct {
	Category      string
	Collection    string
	Gender        string
	Brand         string
	Size          string
	Color         string
	Search        string
	MinPrice      *float64
	MaxPrice      *float64
	PublishedOnly bool
	Sort          string
}
