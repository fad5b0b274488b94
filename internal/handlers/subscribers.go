package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/service"
)

type SubscribeRequest struct {
	Email string `json:"email"`
}

func Subscribe(subscribers *service.SubscriberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/subscribe"
		defer handlePanic(c, route)

		var req SubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if _, err := subscribers.Subscribe(c.Request.Context(), req.Email); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Subscribed successfully"})
	}
}

func ListSubscribers(subscribers *service.SubscriberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/subscribers"
		defer handlePanic(c, route)

		all, err := subscribers.List(c.Request.Context())
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, all)
	}
}
