package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/repository"
)

type products struct {
	db *DB
}

func skuKey(product *models.Product) string {
	if product.SKU == "" {
		return ""
	}
	return "sku:" + product.SKU
}

func (r *products) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.products.rows[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id.Hex(), repository.ErrNotFound)
	}
	return decode[models.Product](stored)
}

func (r *products) List(_ context.Context, filter repository.ProductFilter, page repository.Page) ([]models.Product, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	all, err := decodeAll[models.Product](r.db.products.newestFirst())
	if err != nil {
		return nil, 0, err
	}

	matched := []models.Product{}
	for _, product := range all {
		if matchesProduct(product, filter) {
			matched = append(matched, product)
		}
	}

	switch filter.Sort {
	case repository.SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case repository.SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}
	return window(matched, page), int64(len(matched)), nil
}

func matchesProduct(p models.Product, f repository.ProductFilter) bool {
	if f.PublishedOnly && !p.IsPublished {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Collection != "" && p.Collections != f.Collection {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	if f.Size != "" && !p.Sizes.Contains(f.Size) {
		return false
	}
	if f.Color != "" && !p.Colors.Contains(f.Color) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		return strings.Contains(strings.ToLower(p.Name), search) ||
			strings.Contains(strings.ToLower(p.Description), search)
	}
	return true
}

func (r *products) Insert(_ context.Context, product *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now()
	next := *product
	next.ID = primitive.NewObjectID()
	next.CreatedAt = now
	next.UpdatedAt = now

	if err := r.db.put(r.db.products, next.ID, skuKey(&next), next); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	*product = next
	return nil
}

func (r *products) Replace(_ context.Context, product *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.products.rows[product.ID]; !ok {
		return fmt.Errorf("product %s: %w", product.ID.Hex(), repository.ErrNotFound)
	}

	next := *product
	next.UpdatedAt = r.db.now()
	if err := r.db.put(r.db.products, next.ID, skuKey(&next), next); err != nil {
		return fmt.Errorf("replace product: %w", err)
	}
	*product = next
	return nil
}

func (r *products) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if !r.db.products.remove(id) {
		return fmt.Errorf("product %s: %w", id.Hex(), repository.ErrNotFound)
	}
	return nil
}

type users struct {
	db *DB
}

func (r *users) Insert(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now()
	next := *user
	next.ID = primitive.NewObjectID()
	next.CreatedAt = now
	next.UpdatedAt = now

	if err := r.db.put(r.db.users, next.ID, "email:"+next.Email, next); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	*user = next
	return nil
}

func (r *users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.users.rows[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), repository.ErrNotFound)
	}
	return decode[models.User](stored)
}

func (r *users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.users.lookup("email:" + email)
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, repository.ErrNotFound)
	}
	return decode[models.User](stored)
}

type subscribers struct {
	db *DB
}

func (r *subscribers) Insert(_ context.Context, subscriber *models.Subscriber) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	next := *subscriber
	next.ID = primitive.NewObjectID()
	if next.SubscribedAt.IsZero() {
		next.SubscribedAt = r.db.now()
	}

	if err := r.db.put(r.db.subscribers, next.ID, "email:"+next.Email, next); err != nil {
		return fmt.Errorf("insert subscriber: %w", err)
	}
	*subscriber = next
	return nil
}

func (r *subscribers) List(_ context.Context) ([]models.Subscriber, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return decodeAll[models.Subscriber](r.db.subscribers.newestFirst())
}
