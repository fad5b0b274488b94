package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/service"
)

const msgOrderNotFound = "Order not found"

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func MyOrders(ledger *service.OrderLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/my-orders"
		defer handlePanic(c, route)

		orders, err := ledger.ListForUser(c.Request.Context(), identity(c).UserID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func GetOrder(ledger *service.OrderLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		id, err := objectIDParam(c, "id", msgOrderNotFound)
		if err != nil {
			respondError(c, route, err)
			return
		}

		order, err := ledger.Get(c.Request.Context(), id, identity(c))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// AdminListOrders pages when page or limit is given and returns every order
// otherwise.
func AdminListOrders(ledger *service.OrderLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders"
		defer handlePanic(c, route)

		page, err := parsePagination(c.Query("page"), c.Query("limit"), 0)
		if err != nil {
			respondError(c, route, err)
			return
		}

		orders, total, err := ledger.List(c.Request.Context(), page)
		if err != nil {
			respondError(c, route, err)
			return
		}

		if page.Limit == 0 {
			c.JSON(http.StatusOK, orders)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data": orders,
			"pagination": gin.H{
				"page":  page.Page,
				"limit": page.Limit,
				"total": total,
			},
		})
	}
}

func UpdateOrderStatus(ledger *service.OrderLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id"
		defer handlePanic(c, route)

		id, err := objectIDParam(c, "id", msgOrderNotFound)
		if err != nil {
			respondError(c, route, err)
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, err := ledger.UpdateStatus(c.Request.Context(), id, models.OrderStatus(req.Status))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func DeleteOrder(ledger *service.OrderLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/orders/:id"
		defer handlePanic(c, route)

		id, err := objectIDParam(c, "id", msgOrderNotFound)
		if err != nil {
			respondError(c, route, err)
			return
		}

		if err := ledger.Delete(c.Request.Context(), id); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order removed"})
	}
}
