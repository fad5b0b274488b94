package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"

	PaymentStatusPaid = "Paid"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderItem represents a single product entry within an order.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
	Color     string             `bson:"color,omitempty" json:"color,omitempty"`
}

// Order defines the persisted order document. Only Status changes after
// creation.
type Order struct {
	ID              primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	User            primitive.ObjectID     `bson:"user" json:"user"`
	Checkout        primitive.ObjectID     `bson:"checkout,omitempty" json:"checkout,omitempty"`
	OrderItems      []OrderItem            `bson:"orderItems" json:"orderItems"`
	ShippingAddress ShippingAddress        `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string                 `bson:"paymentMethod" json:"paymentMethod"`
	TotalPrice      float64                `bson:"totalPrice" json:"totalPrice"`
	IsPaid          bool                   `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time             `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	PaymentStatus   string                 `bson:"paymentStatus" json:"paymentStatus"`
	PaymentDetails  map[string]interface{} `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	Status          OrderStatus            `bson:"status" json:"status"`
	CreatedAt       time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time              `bson:"updatedAt" json:"updatedAt"`
}
