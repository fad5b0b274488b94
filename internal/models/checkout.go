package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusPending = "Pending"
	// PaymentTokenPaid is the only payment status that marks a checkout as paid.
	PaymentTokenPaid = "paid"
)

type CheckoutState string

const (
	CheckoutAwaitingPayment CheckoutState = "AwaitingPayment"
	CheckoutPaid            CheckoutState = "Paid"
	CheckoutFinalized       CheckoutState = "Finalized"
)

type ShippingAddress struct {
	Address    string `bson:"address" json:"address" binding:"required"`
	City       string `bson:"city" json:"city" binding:"required"`
	PostalCode string `bson:"postalCode" json:"postalCode" binding:"required"`
	Country    string `bson:"country" json:"country" binding:"required"`
}

// CheckoutItem is a copy of a cart line. Older clients sent the product
// reference as "product" instead of "productId".
type CheckoutItem struct {
	ProductID     primitive.ObjectID  `bson:"productId,omitempty" json:"productId"`
	LegacyProduct *primitive.ObjectID `bson:"product,omitempty" json:"product,omitempty"`
	Name          string              `bson:"name" json:"name"`
	Image         string              `bson:"image" json:"image"`
	Price         float64             `bson:"price" json:"price"`
	Quantity      int                 `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Size          string              `bson:"size,omitempty" json:"size,omitempty"`
	Color         string              `bson:"color,omitempty" json:"color,omitempty"`
}

func (i CheckoutItem) ProductRef() primitive.ObjectID {
	if !i.ProductID.IsZero() {
		return i.ProductID
	}
	if i.LegacyProduct != nil {
		return *i.LegacyProduct
	}
	return primitive.NilObjectID
}

type Checkout struct {
	ID              primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	User            primitive.ObjectID     `bson:"user" json:"user"`
	CheckoutItems   []CheckoutItem         `bson:"checkoutItems" json:"checkoutItems"`
	ShippingAddress ShippingAddress        `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string                 `bson:"paymentMethod" json:"paymentMethod"`
	TotalPrice      float64                `bson:"totalPrice" json:"totalPrice"`
	PaymentStatus   string                 `bson:"paymentStatus" json:"paymentStatus"`
	IsPaid          bool                   `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time             `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	PaymentDetails  map[string]interface{} `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	IsFinalized     bool                   `bson:"isFinalized" json:"isFinalized"`
	FinalizedAt     *time.Time             `bson:"finalizedAt,omitempty" json:"finalizedAt,omitempty"`
	Version         int64                  `bson:"version" json:"-"`
	CreatedAt       time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time              `bson:"updatedAt" json:"updatedAt"`
}

func (c Checkout) State() CheckoutState {
	switch {
	case c.IsFinalized:
		return CheckoutFinalized
	case c.IsPaid:
		return CheckoutPaid
	default:
		return CheckoutAwaitingPayment
	}
}

// OrderItems converts the snapshot into order lines. A missing quantity
// counts as one.
func (c Checkout) OrderItems() []OrderItem {
	items := make([]OrderItem, 0, len(c.CheckoutItems))
	for _, item := range c.CheckoutItems {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		items = append(items, OrderItem{
			ProductID: item.ProductRef(),
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	return items
}

// CopyCheckoutItems detaches the snapshot from the caller's slice.
func CopyCheckoutItems(items []CheckoutItem) []CheckoutItem {
	out := make([]CheckoutItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.LegacyProduct != nil {
			id := *item.LegacyProduct
			out[i].LegacyProduct = &id
		}
	}
	return out
}

// CheckoutItemsFromCart snapshots cart lines.
func CheckoutItemsFromCart(cart *Cart) []CheckoutItem {
	items := make([]CheckoutItem, 0, len(cart.Products))
	for _, line := range cart.Products {
		items = append(items, CheckoutItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Size:      line.Size,
			Color:     line.Color,
		})
	}
	return items
}
