package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

var sessionLog = logrus.WithField("area", "session")

type cartSession interface {
	Load(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	MergeGuestIntoUser(ctx context.Context, guestID string, userID primitive.ObjectID) (*models.Cart, error)
}

type authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
}

type checkoutCreator interface {
	Create(ctx context.Context, userID primitive.ObjectID, in CreateCheckoutInput) (*models.Checkout, error)
}

// LoginResult is an AuthResult plus the cart left after merging the guest
// cart, if any.
type LoginResult struct {
	AuthResult
	Cart *models.Cart
}

// SessionOrchestrator coordinates the cart around login and checkout.
type SessionOrchestrator struct {
	carts     cartSession
	users     authenticator
	checkouts checkoutCreator
}

func NewSessionOrchestrator(carts cartSession, users authenticator, checkouts checkoutCreator) *SessionOrchestrator {
	return &SessionOrchestrator{carts: carts, users: users, checkouts: checkouts}
}

func (o *SessionOrchestrator) MergeOnLogin(ctx context.Context, guestID string, userID primitive.ObjectID) (*models.Cart, error) {
	return o.carts.MergeGuestIntoUser(ctx, guestID, userID)
}

// Login authenticates and, when guestID is set, merges the guest cart. A
// failed merge never fails the login.
func (o *SessionOrchestrator) Login(ctx context.Context, email, password, guestID string) (*LoginResult, error) {
	result, err := o.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	login := &LoginResult{AuthResult: *result}
	if guestID == "" {
		return login, nil
	}

	cart, err := o.MergeOnLogin(ctx, guestID, result.User.ID)
	switch {
	case err == nil:
		login.Cart = cart
	case apperr.Is(err, apperr.KindNotFound):
	default:
		sessionLog.WithError(err).WithFields(logrus.Fields{"guest": guestID, "user": result.User.ID.Hex()}).Warn("cart merge on login failed")
	}
	return login, nil
}

// CheckoutFromCart snapshots the user's cart into a new checkout. The cart
// itself stays until the checkout is finalized.
func (o *SessionOrchestrator) CheckoutFromCart(ctx context.Context, userID primitive.ObjectID, shipping models.ShippingAddress, paymentMethod string) (*models.Checkout, error) {
	cart, err := o.carts.Load(ctx, models.UserOwner(userID))
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperr.InvalidInput(msgNoCheckoutItems)
	}

	return o.checkouts.Create(ctx, userID, CreateCheckoutInput{
		Items:           models.CheckoutItemsFromCart(cart),
		ShippingAddress: shipping,
		PaymentMethod:   paymentMethod,
		TotalPrice:      cart.TotalPrice,
	})
}
