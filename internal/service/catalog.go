package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repository"
)

var catalogLog = logrus.WithField("area", "catalog")

// ProductInput carries a product body. Nil fields are left untouched on
// update; on create they take their zero value.
type ProductInput struct {
	Name          *string
	Description   *string
	Price         *float64
	DiscountPrice *float64
	CountInStock  *int
	SKU           *string
	Category      *string
	Brand         *string
	Sizes         []string
	Colors        []string
	Collections   *string
	Gender        *string
	Material      *string
	Images        models.ProductImages
	IsFeatured    *bool
	IsPublished   *bool
	Tags          []string
	Dimensions    *models.Dimensions
	Weight        *float64
}

type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) List(ctx context.Context, filter repository.ProductFilter, page repository.Page) ([]models.Product, int64, error) {
	products, total, err := s.products.List(ctx, filter, page)
	if err != nil {
		return nil, 0, translate(err, msgProductNotFound)
	}
	return products, total, nil
}

// GetPublished hides unpublished products from the storefront.
func (s *CatalogService) GetPublished(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, msgProductNotFound)
	}
	if !product.IsPublished {
		return nil, apperr.NotFound(msgProductNotFound)
	}
	return product, nil
}

// FindByID serves the cart, which may reference any product.
func (s *CatalogService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, adminID primitive.ObjectID, in ProductInput) (*models.Product, error) {
	product := &models.Product{User: adminID}
	if err := applyProductInput(product, in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(product.Name) == "" {
		return nil, apperr.InvalidInput("Name is required")
	}
	if strings.TrimSpace(product.SKU) == "" {
		return nil, apperr.InvalidInput("SKU is required")
	}

	if err := s.products.Insert(ctx, product); err != nil {
		return nil, productWriteError(err)
	}
	catalogLog.WithFields(logrus.Fields{"product": product.ID.Hex(), "sku": product.SKU}).Info("product created")
	return product, nil
}

func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, in ProductInput) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, msgProductNotFound)
	}
	if err := applyProductInput(product, in); err != nil {
		return nil, err
	}

	if err := s.products.Replace(ctx, product); err != nil {
		return nil, productWriteError(err)
	}
	catalogLog.WithField("product", id.Hex()).Info("product updated")
	return product, nil
}

func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return translate(err, msgProductNotFound)
	}
	catalogLog.WithField("product", id.Hex()).Info("product deleted")
	return nil
}

func productWriteError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Wrap(apperr.KindInvalidInput, "SKU already in use", err)
	}
	return translate(err, msgProductNotFound)
}

func applyProductInput(p *models.Product, in ProductInput) error {
	price, discount, err := resolvePricing(p.Price, p.DiscountPrice, in.Price, in.DiscountPrice)
	if err != nil {
		return apperr.InvalidInput(err.Error())
	}
	p.Price = price
	p.DiscountPrice = discount

	if in.CountInStock != nil {
		if *in.CountInStock < 0 {
			return apperr.InvalidInput("countInStock must not be negative")
		}
		p.CountInStock = *in.CountInStock
	}

	setString(&p.Name, in.Name)
	setString(&p.Description, in.Description)
	setString(&p.SKU, in.SKU)
	setString(&p.Category, in.Category)
	setString(&p.Brand, in.Brand)
	setString(&p.Collections, in.Collections)
	setString(&p.Gender, in.Gender)
	setString(&p.Material, in.Material)

	if in.Sizes != nil {
		p.Sizes = in.Sizes
	}
	if in.Colors != nil {
		p.Colors = in.Colors
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	if in.Dimensions != nil {
		p.Dimensions = in.Dimensions
	}
	if in.Weight != nil {
		p.Weight = *in.Weight
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
