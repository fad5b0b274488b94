package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/service"
)

const msgProductNotFound = "Product not found"

// ProductRequest is shared by create and the partial admin update; absent
// fields stay untouched on update.
type ProductRequest struct {
	Name          *string              `json:"name"`
	Description   *string              `json:"description"`
	Price         *float64             `json:"price"`
	DiscountPrice *float64             `json:"discountPrice"`
	CountInStock  *int                 `json:"countInStock"`
	SKU           *string              `json:"sku"`
	Category      *string              `json:"category"`
	Brand         *string              `json:"brand"`
	Sizes         models.StringList    `json:"sizes"`
	Colors        models.StringList    `json:"colors"`
	Collections   *string              `json:"collections"`
	Gender        *string              `json:"gender"`
	Material      *string              `json:"material"`
	Images        models.ProductImages `json:"images"`
	IsFeatured    *bool                `json:"isFeatured"`
	IsPublished   *bool                `json:"isPublished"`
	Tags          models.StringList    `json:"tags"`
	Dimensions    *models.Dimensions   `json:"dimensions"`
	Weight        *float64             `json:"weight"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		CountInStock:  r.CountInStock,
		SKU:           r.SKU,
		Category:      r.Category,
		Brand:         r.Brand,
		Sizes:         r.Sizes,
		Colors:        r.Colors,
		Collections:   r.Collections,
		Gender:        r.Gender,
		Material:      r.Material,
		Images:        r.Images,
		IsFeatured:    r.IsFeatured,
		IsPublished:   r.IsPublished,
		Tags:          r.Tags,
		Dimensions:    r.Dimensions,
		Weight:        r.Weight,
	}
}

type productResponse struct {
	models.Product
	IsDiscounted   bool    `json:"isDiscounted"`
	EffectivePrice float64 `json:"effectivePrice"`
}

func newProductResponse(p models.Product) productResponse {
	effective := service.EffectivePrice(p.Price, p.DiscountPrice)
	return productResponse{Product: p, IsDiscounted: effective != p.Price, EffectivePrice: effective}
}

func newProductResponses(products []models.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	return out
}

func productFilterFromQuery(c *gin.Context) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{
		Category:   strings.TrimSpace(c.Query("category")),
		Collection: strings.TrimSpace(c.Query("collection")),
		Gender:     strings.TrimSpace(c.Query("gender")),
		Brand:      strings.TrimSpace(c.Query("brand")),
		Size:       strings.TrimSpace(c.Query("size")),
		Color:      strings.TrimSpace(c.Query("color")),
		Search:     strings.TrimSpace(c.Query("search")),
	}

	switch sortBy := c.Query("sortBy"); sortBy {
	case "", repository.SortNewest, repository.SortPriceAsc, repository.SortPriceDesc:
		filter.Sort = sortBy
	default:
		return filter, apperr.InvalidInput("Invalid sortBy")
	}

	var err error
	if filter.MinPrice, err = priceParam(c.Query("minPrice")); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = priceParam(c.Query("maxPrice")); err != nil {
		return filter, err
	}
	return filter, nil
}

func priceParam(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperr.InvalidInput("Invalid price filter")
	}
	return &v, nil
}

// listProducts backs both the storefront and the admin listing.
func listProducts(catalog *service.CatalogService, route string, publishedOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		filter, err := productFilterFromQuery(c)
		if err != nil {
			respondError(c, route, err)
			return
		}
		filter.PublishedOnly = publishedOnly

		page, err := parsePagination(c.Query("page"), c.Query("limit"), 0)
		if err != nil {
			respondError(c, route, err)
			return
		}

		products, total, err := catalog.List(c.Request.Context(), filter, page)
		if err != nil {
			respondError(c, route, err)
			return
		}

		if page.Limit == 0 {
			c.JSON(http.StatusOK, newProductResponses(products))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data": newProductResponses(products),
			"pagination": gin.H{
				"page":       page.Page,
				"limit":      page.Limit,
				"total":      total,
				"totalPages": int64(math.Ceil(float64(total) / float64(page.Limit))),
			},
		})
	}
}

// GetProducts lists published products. Pagination applies only when page
// or limit is sent.
func GetProducts(catalog *service.CatalogService) gin.HandlerFunc {
	return listProducts(catalog, "GET /api/products", true)
}

func GetProduct(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		id, err := objectIDParam(c, "id", msgProductNotFound)
		if err != nil {
			respondError(c, route, err)
			return
		}

		product, err := catalog.GetPublished(c.Request.Context(), id)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newProductResponse(*product))
	}
}

func GetAllProducts(catalog *service.CatalogService) gin.HandlerFunc {
	return listProducts(catalog, "GET /api/admin/products", false)
}

func CreateProduct(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/products"
		defer handlePanic(c, route)

		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		product, err := catalog.Create(c.Request.Context(), identity(c).UserID, req.input())
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, newProductResponse(*product))
	}
}

func UpdateProduct(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/:id"
		defer handlePanic(c, route)

		id, err := objectIDParam(c, "id", msgProductNotFound)
		if err != nil {
			respondError(c, route, err)
			return
		}
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		product, err := catalog.Update(c.Request.Context(), id, req.input())
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newProductResponse(*product))
	}
}

func DeleteProduct(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/products/:id"
		defer handlePanic(c, route)

		id, err := objectIDParam(c, "id", msgProductNotFound)
		if err != nil {
			respondError(c, route, err)
			return
		}

		if err := catalog.Delete(c.Request.Context(), id); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
