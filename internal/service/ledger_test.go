package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/repository"
)

func finalizedOrder(t *testing.T, f *fixture, userID primitive.ObjectID) *models.Order {
	t.Helper()
	checkout := f.paidCheckout(t, userID, []models.CheckoutItem{{ProductID: primitive.NewObjectID(), Name: "tee", Price: 15, Quantity: 2}})
	order, err := f.checkouts.Finalize(context.Background(), checkout.ID, customer(userID))
	require.NoError(t, err)
	return order
}

func TestLedgerRejectsSecondOrderForCheckout(t *testing.T) {
	f := newFixture(t)
	userID := primitive.NewObjectID()
	order := finalizedOrder(t, f, userID)

	checkout, err := f.store.Checkouts.FindByID(context.Background(), order.Checkout)
	require.NoError(t, err)

	_, err = f.ledger.CreateFromCheckout(context.Background(), checkout, checkout.OrderItems())
	requireKind(t, err, apperr.KindInvalidState)
}

func TestLedgerGetExpandsOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered, err := f.users.Register(ctx, RegisterInput{Name: "Grace", Email: "grace@example.com", Password: "hopper1"})
	require.NoError(t, err)
	userID := registered.User.ID
	order := finalizedOrder(t, f, userID)

	view, err := f.ledger.Get(ctx, order.ID, customer(userID))
	require.NoError(t, err)
	assert.Equal(t, "Grace", view.User.Name)
	assert.Equal(t, "grace@example.com", view.User.Email)
	assert.Equal(t, order.TotalPrice, view.TotalPrice)

	_, err = f.ledger.Get(ctx, order.ID, customer(primitive.NewObjectID()))
	requireKind(t, err, apperr.KindNotFound)

	admin := auth.Identity{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}
	_, err = f.ledger.Get(ctx, order.ID, admin)
	require.NoError(t, err)

	_, err = f.ledger.Get(ctx, primitive.NewObjectID(), admin)
	requireKind(t, err, apperr.KindNotFound)
}

func TestLedgerAdminOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := finalizedOrder(t, f, primitive.NewObjectID())
	second := finalizedOrder(t, f, primitive.NewObjectID())

	orders, total, err := f.ledger.List(ctx, repository.Page{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, orders, 1)

	updated, err := f.ledger.UpdateStatus(ctx, first.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)
	assert.Equal(t, first.TotalPrice, updated.TotalPrice)

	_, err = f.ledger.UpdateStatus(ctx, first.ID, models.OrderStatus("Lost"))
	requireKind(t, err, apperr.KindInvalidInput)

	require.NoError(t, f.ledger.Delete(ctx, second.ID))
	err = f.ledger.Delete(ctx, second.ID)
	requireKind(t, err, apperr.KindNotFound)
}
