package service

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func TestValidatePricingRejectsDiscountAtOrAbovePrice(t *testing.T) {
	for _, discount := range []float64{100, 120} {
		if err := validatePricing(100, discount); err == nil {
			t.Fatalf("expected validation error for discountPrice=%v", discount)
		}
	}
	if err := validatePricing(-1, 0); err == nil {
		t.Fatal("expected validation error for negative price")
	}
	if err := validatePricing(100, 0); err != nil {
		t.Fatalf("zero discount should be valid, got %v", err)
	}
}

func TestEffectivePriceUsesDiscountWhenLower(t *testing.T) {
	if got := EffectivePrice(100, 75); got != 75 {
		t.Fatalf("expected discount price 75, got %v", got)
	}
	if got := EffectivePrice(100, 0); got != 100 {
		t.Fatalf("expected regular price 100 without discount, got %v", got)
	}
	if got := EffectivePrice(100, 150); got != 100 {
		t.Fatalf("expected regular price 100 when discount is higher, got %v", got)
	}
}

func TestResolvePricingKeepsStoredValues(t *testing.T) {
	price, discount, err := resolvePricing(100, 80, nil, nil)
	if err != nil || price != 100 || discount != 80 {
		t.Fatalf("expected stored pricing, got price=%v discount=%v err=%v", price, discount, err)
	}

	if _, _, err := resolvePricing(100, 80, ptr(70.0), nil); err == nil {
		t.Fatal("expected error when new price drops below the stored discount")
	}

	price, discount, err = resolvePricing(100, 80, ptr(70.0), ptr(0.0))
	if err != nil || price != 70 || discount != 0 {
		t.Fatalf("expected price=70 discount=0, got price=%v discount=%v err=%v", price, discount, err)
	}
}

func TestCatalogCreateAndPartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := primitive.NewObjectID()

	if _, err := f.catalog.Create(ctx, admin, ProductInput{Name: ptr("Tee")}); !apperr.Is(err, apperr.KindInvalidInput) {
		t.Fatalf("expected invalid input without sku, got %v", err)
	}

	product, err := f.catalog.Create(ctx, admin, ProductInput{
		Name:     ptr(" Tee "),
		SKU:      ptr("TEE-1"),
		Price:    ptr(20.0),
		Category: ptr("Top Wear"),
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if product.Name != "Tee" || product.User != admin {
		t.Fatalf("unexpected product: %+v", product)
	}

	if _, err := f.catalog.Create(ctx, admin, ProductInput{Name: ptr("Other"), SKU: ptr("TEE-1")}); apperr.Message(err) != "SKU already in use" {
		t.Fatalf("expected duplicate sku error, got %v", err)
	}

	updated, err := f.catalog.Update(ctx, product.ID, ProductInput{DiscountPrice: ptr(15.0), IsPublished: ptr(true)})
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if updated.Name != "Tee" || updated.Price != 20 || updated.DiscountPrice != 15 || !updated.IsPublished {
		t.Fatalf("partial update lost fields: %+v", updated)
	}

	if _, err := f.catalog.Update(ctx, product.ID, ProductInput{CountInStock: ptr(-1)}); !apperr.Is(err, apperr.KindInvalidInput) {
		t.Fatalf("expected invalid input for negative stock, got %v", err)
	}
}

func TestCatalogHidesUnpublishedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product, err := f.catalog.Create(ctx, primitive.NewObjectID(), ProductInput{Name: ptr("Draft"), SKU: ptr("DRAFT-1"), Price: ptr(5.0)})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	if _, err := f.catalog.GetPublished(ctx, product.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unpublished product, got %v", err)
	}
	if _, err := f.catalog.FindByID(ctx, product.ID); err != nil {
		t.Fatalf("cart lookup should see unpublished products, got %v", err)
	}

	products, total, err := f.catalog.List(ctx, repository.ProductFilter{PublishedOnly: true}, repository.Page{})
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if total != 0 || len(products) != 0 {
		t.Fatalf("expected no published products, got %d", total)
	}

	if err := f.catalog.Delete(ctx, product.ID); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if err := f.catalog.Delete(ctx, product.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
