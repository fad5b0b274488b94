package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repository"
)

func TestMergeFoldsGuestLinesIntoUserCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "a", 10)
	b := f.product(t, "b", 5)
	userID := primitive.NewObjectID()
	guest := models.GuestOwner("guest_merge")

	f.add(t, guest, a, 2, "M", "red")
	f.add(t, models.UserOwner(userID), a, 1, "M", "red")
	f.add(t, models.UserOwner(userID), b, 1, "", "")

	cart, err := f.session.MergeOnLogin(ctx, "guest_merge", userID)
	require.NoError(t, err)
	require.Len(t, cart.Products, 2)
	assert.Equal(t, 3, cart.Products[0].Quantity)
	assert.Equal(t, 1, cart.Products[1].Quantity)
	assert.Equal(t, 35.0, cart.TotalPrice)

	_, err = f.store.Carts.FindByOwner(ctx, guest)
	assert.Error(t, err, "guest cart is removed")

	stored, err := f.carts.Get(ctx, models.UserOwner(userID))
	require.NoError(t, err)
	assert.Equal(t, cart.TotalPrice, stored.TotalPrice)
}

func TestMergeKeepsStaleGuestSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "a", 10)
	b := f.product(t, "b", 20)
	userID := primitive.NewObjectID()

	f.add(t, models.GuestOwner("guest_stale"), b, 1, "S", "blue")
	f.add(t, models.UserOwner(userID), a, 1, "", "")

	newPrice := 99.0
	_, err := f.catalog.Update(ctx, b.ID, ProductInput{Price: &newPrice})
	require.NoError(t, err)

	cart, err := f.session.MergeOnLogin(ctx, "guest_stale", userID)
	require.NoError(t, err)
	require.Len(t, cart.Products, 2)
	assert.Equal(t, 20.0, cart.Products[1].Price)
	assert.Equal(t, 30.0, cart.TotalPrice)
}

func TestMergeWithEmptyGuestCartReturnsUserCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.product(t, "b", 5)
	userID := primitive.NewObjectID()
	guest := models.GuestOwner("guest_empty")

	f.add(t, guest, b, 1, "", "")
	_, err := f.carts.RemoveItem(ctx, guest, b.ID, "", "")
	require.NoError(t, err)
	before := f.add(t, models.UserOwner(userID), b, 1, "", "")

	cart, err := f.session.MergeOnLogin(ctx, "guest_empty", userID)
	require.NoError(t, err)
	assert.Equal(t, before.ID, cart.ID)
	assert.Equal(t, before.Version, cart.Version, "user cart is not rewritten")
	assert.Equal(t, 1, cart.Products[0].Quantity)
}

func TestMergeRehomesGuestCartWhenUserHasNone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "a", 7)
	userID := primitive.NewObjectID()
	guestCart := f.add(t, models.GuestOwner("guest_move"), a, 3, "M", "red")

	cart, err := f.session.MergeOnLogin(ctx, "guest_move", userID)
	require.NoError(t, err)
	assert.Equal(t, guestCart.ID, cart.ID)
	assert.Equal(t, guestCart.Products, cart.Products)

	id, ok := cart.Owner.UserID()
	require.True(t, ok)
	assert.Equal(t, userID, id)
	_, isGuest := cart.Owner.GuestID()
	assert.False(t, isGuest)

	_, err = f.carts.Get(ctx, models.GuestOwner("guest_move"))
	requireKind(t, err, apperr.KindNotFound)
}

func TestMergeWithoutAnyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.MergeOnLogin(context.Background(), "guest_nobody", primitive.NewObjectID())
	requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, "No cart found", apperr.Message(err))

	_, err = f.session.MergeOnLogin(context.Background(), "", primitive.NewObjectID())
	requireKind(t, err, apperr.KindInvalidInput)
}

func TestLoginMergesGuestCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "a", 12)

	registered, err := f.users.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	f.add(t, models.GuestOwner("guest_login"), a, 2, "", "")

	login, err := f.session.Login(ctx, "ADA@example.com ", "secret1", "guest_login")
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	require.NotNil(t, login.Cart)
	owner, _ := login.Cart.Owner.UserID()
	assert.Equal(t, registered.User.ID, owner)

	login, err = f.session.Login(ctx, "ada@example.com", "secret1", "guest_unknown")
	require.NoError(t, err, "a merge miss never fails login")
	assert.Nil(t, login.Cart)

	_, err = f.session.Login(ctx, "ada@example.com", "wrong-pass", "")
	requireKind(t, err, apperr.KindInvalidInput)
}

func TestCheckoutFromCartSnapshotsLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "a", 12.5)
	userID := primitive.NewObjectID()
	owner := models.UserOwner(userID)

	_, err := f.session.CheckoutFromCart(ctx, userID, sampleAddress(), "PayPal")
	requireKind(t, err, apperr.KindNotFound)

	f.add(t, owner, a, 2, "M", "red")
	checkout, err := f.session.CheckoutFromCart(ctx, userID, sampleAddress(), "PayPal")
	require.NoError(t, err)
	require.Len(t, checkout.CheckoutItems, 1)
	assert.Equal(t, a.ID, checkout.CheckoutItems[0].ProductID)
	assert.Equal(t, 2, checkout.CheckoutItems[0].Quantity)
	assert.Equal(t, 25.0, checkout.TotalPrice)

	f.add(t, owner, a, 5, "M", "red")
	stored, err := f.checkouts.Get(ctx, checkout.ID, customer(userID))
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CheckoutItems[0].Quantity, "checkout does not follow the cart")

	_, err = f.carts.RemoveItem(ctx, owner, a.ID, "M", "red")
	require.NoError(t, err)
	_, err = f.session.CheckoutFromCart(ctx, userID, sampleAddress(), "PayPal")
	requireKind(t, err, apperr.KindInvalidInput)
}

// racingCarts runs onRead once, right after the first FindByOwner has
// returned, so a write lands between a read and whatever follows it.
type racingCarts struct {
	repository.CartRepository
	onRead func()
	fired  bool
}

func (r *racingCarts) FindByOwner(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	cart, err := r.CartRepository.FindByOwner(ctx, owner)
	if err == nil && !r.fired && r.onRead != nil {
		r.fired = true
		r.onRead()
	}
	return cart, err
}

func TestCheckoutFromCartWithRedisCacheSeesLatestWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redisCache := cache.NewRedisCache(client, time.Minute)

	f := newFixtureWithCache(t, redisCache)
	ctx := context.Background()
	a := f.product(t, "a", 10)
	b := f.product(t, "b", 5)
	userID := primitive.NewObjectID()
	owner := models.UserOwner(userID)
	f.add(t, owner, a, 1, "", "")

	racing := &racingCarts{CartRepository: f.store.Carts}
	racing.onRead = func() { f.add(t, owner, b, 1, "", "") }
	carts := NewCartService(racing, f.catalog, redisCache)
	session := NewSessionOrchestrator(carts, f.users, f.checkouts)

	first, err := carts.Get(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, first.Products, 1, "the read started before the add")

	_, err = redisCache.Get(ctx, owner)
	assert.ErrorIs(t, err, cache.ErrCacheMiss, "an outdated fill must not stay cached")

	again, err := carts.Get(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, again.Products, 2)
	assert.Equal(t, 15.0, again.TotalPrice)

	// Even an outdated cache entry must not leak into a checkout.
	require.NoError(t, redisCache.Set(ctx, first))
	checkout, err := session.CheckoutFromCart(ctx, userID, sampleAddress(), "PayPal")
	require.NoError(t, err)
	assert.Len(t, checkout.CheckoutItems, 2)
	assert.Equal(t, 15.0, checkout.TotalPrice)
}
