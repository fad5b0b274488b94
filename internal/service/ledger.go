package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/repository"
)

var orderLog = logrus.WithField("area", "order")

const msgOrderNotFound = "Order not found"

// UserLookup resolves order owners for display.
type UserLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// OrderOwner is the slice of the user shown next to an order.
type OrderOwner struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name,omitempty"`
	Email string             `json:"email,omitempty"`
}

// OrderView is an order with its owner expanded.
type OrderView struct {
	models.Order
	User OrderOwner `json:"user"`
}

// OrderLedger appends finalized orders and serves the read and admin side.
// Orders are never modified after creation except for their status.
type OrderLedger struct {
	orders repository.OrderRepository
	users  UserLookup
}

func NewOrderLedger(orders repository.OrderRepository, users UserLookup) *OrderLedger {
	return &OrderLedger{orders: orders, users: users}
}

// CreateFromCheckout writes the order for a finalized checkout. A second
// order for the same checkout is refused by the store.
func (l *OrderLedger) CreateFromCheckout(ctx context.Context, checkout *models.Checkout, items []models.OrderItem) (*models.Order, error) {
	order := &models.Order{
		User:            checkout.User,
		Checkout:        checkout.ID,
		OrderItems:      items,
		ShippingAddress: checkout.ShippingAddress,
		PaymentMethod:   checkout.PaymentMethod,
		TotalPrice:      checkout.TotalPrice,
		IsPaid:          true,
		PaidAt:          checkout.PaidAt,
		PaymentStatus:   models.PaymentStatusPaid,
		PaymentDetails:  checkout.PaymentDetails,
		Status:          models.OrderProcessing,
	}

	if err := l.orders.Insert(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Wrap(apperr.KindInvalidState, msgAlreadyFinalized, err)
		}
		return nil, translate(err, msgOrderNotFound)
	}

	orderLog.WithFields(logrus.Fields{
		"event":    "order.created",
		"order":    order.ID.Hex(),
		"checkout": checkout.ID.Hex(),
		"user":     checkout.User.Hex(),
		"total":    order.TotalPrice,
	}).Info("order created")
	return order, nil
}

func (l *OrderLedger) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := l.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, translate(err, msgOrderNotFound)
	}
	return orders, nil
}

// Get returns the order when viewer owns it or is an admin. Other viewers
// get NotFound so order ids cannot be probed.
func (l *OrderLedger) Get(ctx context.Context, id primitive.ObjectID, viewer auth.Identity) (*OrderView, error) {
	order, err := l.orders.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, msgOrderNotFound)
	}
	if order.User != viewer.UserID && !viewer.IsAdmin() {
		return nil, apperr.NotFound(msgOrderNotFound)
	}

	view := &OrderView{Order: *order, User: OrderOwner{ID: order.User}}
	owner, err := l.users.FindByID(ctx, order.User)
	switch {
	case err == nil:
		view.User.Name = owner.Name
		view.User.Email = owner.Email
	case !errors.Is(err, repository.ErrNotFound):
		return nil, translate(err, msgOrderNotFound)
	}
	return view, nil
}

func (l *OrderLedger) List(ctx context.Context, page repository.Page) ([]models.Order, int64, error) {
	orders, total, err := l.orders.List(ctx, page)
	if err != nil {
		return nil, 0, translate(err, msgOrderNotFound)
	}
	return orders, total, nil
}

func (l *OrderLedger) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.InvalidInput("Invalid order status")
	}

	order, err := l.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, translate(err, msgOrderNotFound)
	}
	orderLog.WithFields(logrus.Fields{"order": id.Hex(), "status": status}).Info("order status updated")
	return order, nil
}

func (l *OrderLedger) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := l.orders.Delete(ctx, id); err != nil {
		return translate(err, msgOrderNotFound)
	}
	orderLog.WithField("order", id.Hex()).Info("order deleted")
	return nil
}
