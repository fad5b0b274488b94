package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/repository"
)

var checkoutLog = logrus.WithField("area", "checkout")

const (
	msgCheckoutNotFound  = "Checkout not found"
	msgAlreadyFinalized  = "Checkout already finalized"
	msgNotPaid           = "Checkout not paid"
	msgPaymentFailed     = "Payment not successful"
	msgNoCheckoutItems   = "No items in checkout"
	msgInvalidTotalPrice = "Total price must not be negative"
)

// OrderWriter creates the order of a finalized checkout.
type OrderWriter interface {
	CreateFromCheckout(ctx context.Context, checkout *models.Checkout, items []models.OrderItem) (*models.Order, error)
}

// CartRemover deletes a user's cart once their order exists.
type CartRemover interface {
	DeleteForUser(ctx context.Context, userID primitive.ObjectID) error
}

type CreateCheckoutInput struct {
	Items           []models.CheckoutItem
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	TotalPrice      float64
}

// CheckoutService drives a checkout from AwaitingPayment through Paid to
// Finalized. Finalized is terminal.
type CheckoutService struct {
	checkouts repository.CheckoutRepository
	orders    OrderWriter
	carts     CartRemover
	tx        repository.Transactor
	now       func() time.Time

	cleanupFailures atomic.Int64
	// OnCleanupFailure, when set, is called after the cart of a finalized
	// checkout could not be deleted.
	OnCleanupFailure func(checkoutID, userID primitive.ObjectID, err error)
}

func NewCheckoutService(checkouts repository.CheckoutRepository, orders OrderWriter, carts CartRemover, tx repository.Transactor) *CheckoutService {
	if tx == nil {
		tx = repository.Passthrough{}
	}
	return &CheckoutService{
		checkouts: checkouts,
		orders:    orders,
		carts:     carts,
		tx:        tx,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CleanupFailures counts post-finalize cart deletions that failed.
func (s *CheckoutService) CleanupFailures() int64 {
	return s.cleanupFailures.Load()
}

func (s *CheckoutService) Create(ctx context.Context, userID primitive.ObjectID, in CreateCheckoutInput) (*models.Checkout, error) {
	if len(in.Items) == 0 {
		return nil, apperr.InvalidInput(msgNoCheckoutItems)
	}
	if in.TotalPrice < 0 {
		return nil, apperr.InvalidInput(msgInvalidTotalPrice)
	}

	checkout := &models.Checkout{
		User:            userID,
		CheckoutItems:   models.CopyCheckoutItems(in.Items),
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		TotalPrice:      in.TotalPrice,
		PaymentStatus:   models.PaymentStatusPending,
	}
	if err := s.checkouts.Insert(ctx, checkout); err != nil {
		return nil, translate(err, msgCheckoutNotFound)
	}

	checkoutLog.WithFields(logrus.Fields{"checkout": checkout.ID.Hex(), "user": userID.Hex(), "items": len(checkout.CheckoutItems)}).Info("checkout created")
	return checkout, nil
}

// Get returns the checkout when viewer owns it or is an admin.
func (s *CheckoutService) Get(ctx context.Context, id primitive.ObjectID, viewer auth.Identity) (*models.Checkout, error) {
	checkout, err := s.checkouts.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, msgCheckoutNotFound)
	}
	if checkout.User != viewer.UserID && !viewer.IsAdmin() {
		return nil, apperr.NotFound(msgCheckoutNotFound)
	}
	return checkout, nil
}

// ConfirmPayment records a client reported payment. Only the status "paid"
// moves the checkout forward; confirming again re-stamps paidAt.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, id primitive.ObjectID, viewer auth.Identity, paymentStatus string, details map[string]interface{}) (*models.Checkout, error) {
	checkout, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	if paymentStatus != models.PaymentTokenPaid {
		checkoutLog.WithFields(logrus.Fields{"checkout": id.Hex(), "status": paymentStatus}).Info("payment rejected")
		return nil, apperr.InvalidState(msgPaymentFailed)
	}

	paidAt := s.now()
	checkout.IsPaid = true
	checkout.PaymentStatus = paymentStatus
	checkout.PaidAt = &paidAt
	checkout.PaymentDetails = details

	if err := s.checkouts.Save(ctx, checkout); err != nil {
		return nil, translate(err, msgCheckoutNotFound)
	}

	checkoutLog.WithField("checkout", id.Hex()).Info("payment confirmed")
	return checkout, nil
}

// Finalize turns a paid checkout into exactly one order. The order is
// written before the checkout is marked finalized, and the unique order per
// checkout index turns a second attempt into ErrDuplicate, so isFinalized
// only ever moves forward. With transactions both writes commit together.
// The user's cart is deleted afterwards on a best effort basis.
func (s *CheckoutService) Finalize(ctx context.Context, id primitive.ObjectID, viewer auth.Identity) (*models.Order, error) {
	checkout, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	if err := finalizable(checkout); err != nil {
		return nil, err
	}

	var (
		order   *models.Order
		ordered bool
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.orders.CreateFromCheckout(txCtx, checkout, checkout.OrderItems())
		if err != nil {
			return err
		}
		ordered = true
		return s.markFinalized(txCtx, id)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// The order exists already; its checkout may still be unmarked.
		if markErr := s.markFinalized(ctx, id); markErr != nil {
			checkoutLog.WithError(markErr).WithField("checkout", id.Hex()).Warn("checkout with an order left unfinalized")
		}
		return nil, apperr.InvalidState(msgAlreadyFinalized)
	}
	if err != nil {
		if ordered && !s.tx.Atomic() {
			checkoutLog.WithError(err).WithFields(logrus.Fields{
				"checkout": id.Hex(),
				"order":    order.ID.Hex(),
			}).Warn("order written but checkout not marked finalized")
		}
		return nil, s.finalizeError(ctx, id, err)
	}

	checkoutLog.WithFields(logrus.Fields{"checkout": id.Hex(), "order": order.ID.Hex()}).Info("checkout finalized")
	s.removeCart(ctx, checkout)
	return order, nil
}

// markFinalized claims the checkout. A checkout someone else already
// finalized counts as done: claims only follow a written order.
func (s *CheckoutService) markFinalized(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.checkouts.ClaimFinalize(ctx, id, s.now())
	if !errors.Is(err, repository.ErrVersionConflict) {
		return err
	}

	current, findErr := s.checkouts.FindByID(ctx, id)
	if findErr == nil && current.IsFinalized {
		return nil
	}
	return err
}

func finalizable(checkout *models.Checkout) error {
	switch checkout.State() {
	case models.CheckoutFinalized:
		return apperr.InvalidState(msgAlreadyFinalized)
	case models.CheckoutAwaitingPayment:
		return apperr.InvalidState(msgNotPaid)
	}
	return nil
}

// finalizeError explains a lost claim by the state another request left
// the checkout in.
func (s *CheckoutService) finalizeError(ctx context.Context, id primitive.ObjectID, err error) error {
	if !errors.Is(err, repository.ErrVersionConflict) {
		return translate(err, msgCheckoutNotFound)
	}

	current, findErr := s.checkouts.FindByID(ctx, id)
	if findErr != nil {
		return translate(findErr, msgCheckoutNotFound)
	}
	if stateErr := finalizable(current); stateErr != nil {
		return stateErr
	}
	return translate(err, msgCheckoutNotFound)
}

func (s *CheckoutService) removeCart(ctx context.Context, checkout *models.Checkout) {
	err := s.carts.DeleteForUser(ctx, checkout.User)
	if err == nil || apperr.Is(err, apperr.KindNotFound) {
		return
	}

	s.cleanupFailures.Add(1)
	checkoutLog.WithError(err).WithFields(logrus.Fields{
		"checkout": checkout.ID.Hex(),
		"user":     checkout.User.Hex(),
	}).Error("cart cleanup after finalize failed")
	if s.OnCleanupFailure != nil {
		s.OnCleanupFailure(checkout.ID, checkout.User, err)
	}
}
