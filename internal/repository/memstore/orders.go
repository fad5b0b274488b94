package memstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/repository"
)

type orders struct {
	db *DB
}

func checkoutKey(order *models.Order) string {
	if order.Checkout.IsZero() {
		return ""
	}
	return "checkout:" + order.Checkout.Hex()
}

func (r *orders) Insert(_ context.Context, order *models.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now()
	next := *order
	next.ID = primitive.NewObjectID()
	next.CreatedAt = now
	next.UpdatedAt = now

	if err := r.db.put(r.db.orders, next.ID, checkoutKey(&next), next); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	*order = next
	return nil
}

func (r *orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.orders.rows[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id.Hex(), repository.ErrNotFound)
	}
	return decode[models.Order](stored)
}

func (r *orders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	all, err := decodeAll[models.Order](r.db.orders.newestFirst())
	if err != nil {
		return nil, err
	}
	mine := []models.Order{}
	for _, order := range all {
		if order.User == userID {
			mine = append(mine, order)
		}
	}
	return mine, nil
}

func (r *orders) List(_ context.Context, page repository.Page) ([]models.Order, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	all, err := decodeAll[models.Order](r.db.orders.newestFirst())
	if err != nil {
		return nil, 0, err
	}
	return window(all, page), int64(len(all)), nil
}

func (r *orders) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.orders.rows[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id.Hex(), repository.ErrNotFound)
	}
	order, err := decode[models.Order](stored)
	if err != nil {
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = r.db.now()
	if err := r.db.put(r.db.orders, id, stored.key, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orders) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if !r.db.orders.remove(id) {
		return fmt.Errorf("order %s: %w", id.Hex(), repository.ErrNotFound)
	}
	return nil
}
