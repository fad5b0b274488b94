package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOrderItemsDefaultsQuantityAndLegacyProduct(t *testing.T) {
	legacy := primitive.NewObjectID()
	current := primitive.NewObjectID()
	checkout := Checkout{CheckoutItems: []CheckoutItem{
		{ProductID: current, Name: "A", Price: 10, Quantity: 3},
		{LegacyProduct: &legacy, Name: "B", Price: 4},
	}}

	items := checkout.OrderItems()
	if items[0].ProductID != current || items[0].Quantity != 3 {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].ProductID != legacy || items[1].Quantity != 1 {
		t.Fatalf("unexpected legacy item %+v", items[1])
	}
}

func TestCheckoutState(t *testing.T) {
	c := Checkout{}
	if c.State() != CheckoutAwaitingPayment {
		t.Fatalf("expected awaiting payment, got %s", c.State())
	}
	c.IsPaid = true
	if c.State() != CheckoutPaid {
		t.Fatalf("expected paid, got %s", c.State())
	}
	c.IsFinalized = true
	if c.State() != CheckoutFinalized {
		t.Fatalf("expected finalized, got %s", c.State())
	}
}

func TestCopyCheckoutItemsDetachesSnapshot(t *testing.T) {
	legacy := primitive.NewObjectID()
	src := []CheckoutItem{{LegacyProduct: &legacy, Quantity: 1}}
	dst := CopyCheckoutItems(src)

	src[0].Quantity = 9
	*src[0].LegacyProduct = primitive.NewObjectID()

	if dst[0].Quantity != 1 || *dst[0].LegacyProduct != legacy {
		t.Fatalf("copy should not follow the source, got %+v", dst[0])
	}
}
