package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"storefront/internal/apperr"
	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repository"
)

var cartLog = logrus.WithField("area", "cart")

const (
	msgCartNotFound    = "Cart not found"
	msgLineNotFound    = "Product not found in cart"
	msgProductNotFound = "Product not found"
)

// ProductLookup is the part of the catalog the cart needs.
type ProductLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type AddItemInput struct {
	ProductID primitive.ObjectID
	Quantity  int
	Size      string
	Color     string
}

// CartService owns cart documents. Reads go through the cache; every write
// loads from the repository, saves with the loaded version and invalidates
// the cached copy.
type CartService struct {
	carts    repository.CartRepository
	products ProductLookup
	cache    cache.CartCache
	sfg      singleflight.Group
	now      func() time.Time
	newGuest func() string
}

func NewCartService(carts repository.CartRepository, products ProductLookup, c cache.CartCache) *CartService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CartService{
		carts:    carts,
		products: products,
		cache:    c,
		now:      func() time.Time { return time.Now().UTC() },
		newGuest: NewGuestID,
	}
}

// NewGuestID mints the id of a cart created without an owner.
func NewGuestID() string {
	return "guest_" + uuid.NewString()
}

func (s *CartService) Get(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	if owner.IsZero() {
		return nil, apperr.NotFound(msgCartNotFound)
	}

	v, err, _ := s.sfg.Do(owner.Key(), func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, owner)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			cartLog.WithError(err).Warn("cache get failed")
		}

		cart, err = s.carts.FindByOwner(ctx, owner)
		if err != nil {
			return nil, translate(err, msgCartNotFound)
		}

		s.fill(ctx, cart)
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	// The singleflight result is shared between callers.
	return v.(*models.Cart).Clone(), nil
}

// Load reads the cart straight from the store. Callers that copy the cart
// into something durable use it instead of Get.
func (s *CartService) Load(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	if owner.IsZero() {
		return nil, apperr.NotFound(msgCartNotFound)
	}

	cart, err := s.carts.FindByOwner(ctx, owner)
	if err != nil {
		return nil, translate(err, msgCartNotFound)
	}
	return cart, nil
}

// fill caches cart, then drops the entry again when the stored version is
// no longer the one that was read. A write that saved and invalidated
// between the read and the Set would otherwise be shadowed until the TTL.
func (s *CartService) fill(ctx context.Context, cart *models.Cart) {
	if err := s.cache.Set(ctx, cart); err != nil {
		cartLog.WithError(err).Warn("cache set failed")
		return
	}

	current, err := s.carts.FindByOwner(ctx, cart.Owner)
	if err == nil && current.Version == cart.Version {
		return
	}
	s.invalidate(ctx, cart.Owner)
}

// AddItem adds quantity of a product variant, creating the cart when the
// owner has none. A zero owner gets a fresh guest id. The bool reports
// whether a cart was created.
func (s *CartService) AddItem(ctx context.Context, owner models.CartOwner, in AddItemInput) (*models.Cart, bool, error) {
	if in.Quantity < 1 {
		return nil, false, apperr.InvalidInput("Quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, false, translate(err, msgProductNotFound)
	}

	var cart *models.Cart
	if owner.IsZero() {
		owner = models.GuestOwner(s.newGuest())
	} else {
		cart, err = s.carts.FindByOwner(ctx, owner)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, false, translate(err, msgCartNotFound)
		}
	}

	created := cart == nil
	if created {
		cart = models.NewCart(owner, s.now())
	}

	cart.AddLine(models.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.PrimaryImage(),
		Price:     product.Price,
		Size:      in.Size,
		Color:     in.Color,
		Quantity:  in.Quantity,
	})

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, false, translate(err, msgCartNotFound)
	}
	s.invalidate(ctx, owner)

	cartLog.WithFields(logrus.Fields{"owner": owner.Key(), "product": product.ID.Hex(), "created": created}).Info("item added")
	return cart, created, nil
}

// SetItemQuantity sets the line quantity; zero or less removes the line.
func (s *CartService) SetItemQuantity(ctx context.Context, owner models.CartOwner, productID primitive.ObjectID, size, color string, quantity int) (*models.Cart, error) {
	return s.mutate(ctx, owner, func(cart *models.Cart) bool {
		return cart.SetQuantity(productID, size, color, quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, owner models.CartOwner, productID primitive.ObjectID, size, color string) (*models.Cart, error) {
	return s.mutate(ctx, owner, func(cart *models.Cart) bool {
		return cart.RemoveLine(productID, size, color)
	})
}

func (s *CartService) mutate(ctx context.Context, owner models.CartOwner, change func(*models.Cart) bool) (*models.Cart, error) {
	if owner.IsZero() {
		return nil, apperr.NotFound(msgCartNotFound)
	}

	cart, err := s.carts.FindByOwner(ctx, owner)
	if err != nil {
		return nil, translate(err, msgCartNotFound)
	}
	if !change(cart) {
		return nil, apperr.NotFound(msgLineNotFound)
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, translate(err, msgCartNotFound)
	}
	s.invalidate(ctx, owner)
	return cart, nil
}

// MergeGuestIntoUser folds the guest cart into the user's cart, or hands
// the guest cart over to the user when they have none. No guest line is
// lost: matching lines add up, the rest are appended with the snapshot
// they were added with.
func (s *CartService) MergeGuestIntoUser(ctx context.Context, guestID string, userID primitive.ObjectID) (*models.Cart, error) {
	if guestID == "" {
		return nil, apperr.InvalidInput("Guest ID is required")
	}
	guestOwner := models.GuestOwner(guestID)
	userOwner := models.UserOwner(userID)

	guestCart, err := s.findOptional(ctx, guestOwner)
	if err != nil {
		return nil, err
	}
	userCart, err := s.findOptional(ctx, userOwner)
	if err != nil {
		return nil, err
	}

	if guestCart != nil && !guestCart.IsEmpty() {
		if userCart != nil {
			userCart.Absorb(guestCart)
			if err := s.carts.Save(ctx, userCart); err != nil {
				return nil, translate(err, msgCartNotFound)
			}
			if err := s.carts.Delete(ctx, guestCart.ID); err != nil {
				cartLog.WithError(err).WithField("guest", guestID).Warn("guest cart not deleted after merge")
			}
			s.invalidate(ctx, guestOwner)
			s.invalidate(ctx, userOwner)
			cartLog.WithFields(logrus.Fields{"guest": guestID, "user": userID.Hex()}).Info("guest cart merged")
			return userCart, nil
		}

		guestCart.Owner = userOwner
		if err := s.carts.Save(ctx, guestCart); err != nil {
			return nil, translate(err, msgCartNotFound)
		}
		s.invalidate(ctx, guestOwner)
		s.invalidate(ctx, userOwner)
		cartLog.WithFields(logrus.Fields{"guest": guestID, "user": userID.Hex()}).Info("guest cart assigned to user")
		return guestCart, nil
	}

	if userCart != nil {
		return userCart, nil
	}
	return nil, apperr.NotFound("No cart found")
}

// DeleteForUser removes the user's cart. A missing cart is reported as
// NotFound.
func (s *CartService) DeleteForUser(ctx context.Context, userID primitive.ObjectID) error {
	owner := models.UserOwner(userID)
	if err := s.carts.DeleteByOwner(ctx, owner); err != nil {
		return translate(err, msgCartNotFound)
	}
	s.invalidate(ctx, owner)
	return nil
}

func (s *CartService) findOptional(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	cart, err := s.carts.FindByOwner(ctx, owner)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, msgCartNotFound)
	}
	return cart, nil
}

func (s *CartService) invalidate(ctx context.Context, owner models.CartOwner) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, owner); err != nil {
		cartLog.WithError(err).WithField("owner", owner.Key()).Warn("cache invalidate failed")
	}
}
