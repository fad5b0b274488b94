package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/service"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	GuestID  string `json:"guestId"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{ID: user.ID.Hex(), Name: user.Name, Email: user.Email, Role: user.Role}
}

func Register(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/register"
		defer handlePanic(c, route)

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		result, err := users.Register(c.Request.Context(), service.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"newUser": newUserResponse(result.User),
			"token":   result.Token,
		})
	}
}

// Login answers with the merged cart when the client sent its guest id.
func Login(session *service.SessionOrchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		result, err := session.Login(c.Request.Context(), req.Email, req.Password, req.GuestID)
		if err != nil {
			respondError(c, route, err)
			return
		}

		body := gin.H{
			"user":  newUserResponse(result.User),
			"token": result.Token,
		}
		if result.Cart != nil {
			body["cart"] = result.Cart
		}
		c.JSON(http.StatusOK, body)
	}
}

func Profile(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/profile"
		defer handlePanic(c, route)

		user, err := users.Profile(c.Request.Context(), identity(c).UserID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
