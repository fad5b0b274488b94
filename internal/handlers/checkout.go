package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/service"
)

const msgCheckoutNotFound = "Checkout not found"

type CreateCheckoutRequest struct {
	CheckoutItems   []models.CheckoutItem  `json:"checkoutItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
	TotalPrice      float64                `json:"totalPrice"`
}

type CheckoutFromCartRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
}

type PayCheckoutRequest struct {
	PaymentStatus  string                 `json:"paymentStatus"`
	PaymentDetails map[string]interface{} `json:"paymentDetails"`
}

func CreateCheckout(checkouts *service.CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/checkout"
		defer handlePanic(c, route)

		var req CreateCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		checkout, err := checkouts.Create(c.Request.Context(), identity(c).UserID, service.CreateCheckoutInput{
			Items:           req.CheckoutItems,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			TotalPrice:      req.TotalPrice,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, checkout)
	}
}

func CheckoutFromCart(session *service.SessionOrchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/checkout/from-cart"
		defer handlePanic(c, route)

		var req CheckoutFromCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		checkout, err := session.CheckoutFromCart(c.Request.Context(), identity(c).UserID, req.ShippingAddress, req.PaymentMethod)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, checkout)
	}
}

func GetCheckout(checkouts *service.CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/checkout/:id"
		defer handlePanic(c, route)

		id, err := objectIDParam(c, "id", msgCheckoutNotFound)
		if err != nil {
			respondError(c, route, err)
			return
		}

		checkout, err := checkouts.Get(c.Request.Context(), id, identity(c))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, checkout)
	}
}

func PayCheckout(checkouts *service.CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/checkout/:id/pay"
		defer handlePanic(c, route)

		id, err := objectIDParam(c, "id", msgCheckoutNotFound)
		if err != nil {
			respondError(c, route, err)
			return
		}
		var req PayCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		checkout, err := checkouts.ConfirmPayment(c.Request.Context(), id, identity(c), req.PaymentStatus, req.PaymentDetails)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, checkout)
	}
}

func FinalizeCheckout(checkouts *service.CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/checkout/:id/finalize"
		defer handlePanic(c, route)

		id, err := objectIDParam(c, "id", msgCheckoutNotFound)
		if err != nil {
			respondError(c, route, err)
			return
		}

		order, err := checkouts.Finalize(c.Request.Context(), id, identity(c))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}
