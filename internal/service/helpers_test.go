package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/repository/memstore"
)

type fixture struct {
	store     *repository.Store
	creds     *auth.Credentials
	catalog   *CatalogService
	carts     *CartService
	ledger    *OrderLedger
	checkouts *CheckoutService
	users     *UserService
	session   *SessionOrchestrator
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithCache(t, cache.Noop{})
}

func newFixtureWithCache(t *testing.T, c cache.CartCache) *fixture {
	t.Helper()

	store := memstore.New()
	f := &fixture{store: store, creds: auth.NewCredentials("test-secret", time.Hour)}
	f.catalog = NewCatalogService(store.Products)
	f.carts = NewCartService(store.Carts, f.catalog, c)
	f.ledger = NewOrderLedger(store.Orders, store.Users)
	f.checkouts = NewCheckoutService(store.Checkouts, f.ledger, f.carts, store.Tx)
	f.users = NewUserService(store.Users, f.creds)
	f.session = NewSessionOrchestrator(f.carts, f.users, f.checkouts)
	return f
}

func (f *fixture) product(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Price:       price,
		SKU:         name + "-" + primitive.NewObjectID().Hex(),
		IsPublished: true,
		Images:      models.ProductImages{{URL: "https://cdn.example/" + name + ".jpg"}},
	}
	require.NoError(t, f.store.Products.Insert(context.Background(), p))
	return p
}

func (f *fixture) add(t *testing.T, owner models.CartOwner, p *models.Product, qty int, size, color string) *models.Cart {
	t.Helper()
	cart, _, err := f.carts.AddItem(context.Background(), owner, AddItemInput{ProductID: p.ID, Quantity: qty, Size: size, Color: color})
	require.NoError(t, err)
	return cart
}

// paidCheckout creates and pays a checkout for userID.
func (f *fixture) paidCheckout(t *testing.T, userID primitive.ObjectID, items []models.CheckoutItem) *models.Checkout {
	t.Helper()
	ctx := context.Background()
	checkout, err := f.checkouts.Create(ctx, userID, CreateCheckoutInput{
		Items:           items,
		ShippingAddress: sampleAddress(),
		PaymentMethod:   "PayPal",
		TotalPrice:      30,
	})
	require.NoError(t, err)

	checkout, err = f.checkouts.ConfirmPayment(ctx, checkout.ID, customer(userID), "paid", map[string]interface{}{"transactionId": "tx-1"})
	require.NoError(t, err)
	return checkout
}

func customer(id primitive.ObjectID) auth.Identity {
	return auth.Identity{UserID: id, Role: models.RoleCustomer}
}

func sampleAddress() models.ShippingAddress {
	return models.ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind.String(), apperr.KindOf(err).String(), "error: %v", err)
}

func lineTotal(cart *models.Cart) float64 {
	return models.LinesTotal(cart.Products)
}
