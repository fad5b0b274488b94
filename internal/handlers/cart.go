package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/service"
)

// CartItemRequest is the body of the cart write routes. Quantity is
// ignored by DELETE. A userId sent by older clients is not trusted; the
// owner comes from the bearer token.
type CartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	GuestID   string `json:"guestId"`
}

type MergeCartRequest struct {
	GuestID string `json:"guestId" binding:"required"`
}

// cartOwner picks the signed in user over any guest id.
func cartOwner(c *gin.Context, guestID string) models.CartOwner {
	if id, ok := auth.IdentityFrom(c.Request.Context()); ok {
		return models.UserOwner(id.UserID)
	}
	if guestID = strings.TrimSpace(guestID); guestID != "" {
		return models.GuestOwner(guestID)
	}
	return models.CartOwner{}
}

func AddToCart(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart"
		defer handlePanic(c, route)

		var req CartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		productID, err := parseObjectID(req.ProductID, "productId")
		if err != nil {
			respondError(c, route, err)
			return
		}

		cart, created, err := carts.AddItem(c.Request.Context(), cartOwner(c, req.GuestID), service.AddItemInput{
			ProductID: productID,
			Quantity:  req.Quantity,
			Size:      req.Size,
			Color:     req.Color,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}

		// 201 follows cart creation, for guests and token users alike.
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, cart)
	}
}

// UpdateCartItem sets a line quantity; zero removes the line.
func UpdateCartItem(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/cart"
		defer handlePanic(c, route)

		var req CartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		productID, err := parseObjectID(req.ProductID, "productId")
		if err != nil {
			respondError(c, route, err)
			return
		}

		cart, err := carts.SetItemQuantity(c.Request.Context(), cartOwner(c, req.GuestID), productID, req.Size, req.Color, req.Quantity)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func RemoveCartItem(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart"
		defer handlePanic(c, route)

		var req CartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		productID, err := parseObjectID(req.ProductID, "productId")
		if err != nil {
			respondError(c, route, err)
			return
		}

		cart, err := carts.RemoveItem(c.Request.Context(), cartOwner(c, req.GuestID), productID, req.Size, req.Color)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func GetCart(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/cart"
		defer handlePanic(c, route)

		cart, err := carts.Get(c.Request.Context(), cartOwner(c, c.Query("guestId")))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func MergeCart(session *service.SessionOrchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/merge"
		defer handlePanic(c, route)

		var req MergeCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		cart, err := session.MergeOnLogin(c.Request.Context(), strings.TrimSpace(req.GuestID), identity(c).UserID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}
