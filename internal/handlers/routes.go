package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"storefront/internal/middleware"
	"storefront/internal/service"
)

// Services is everything the routes call into.
type Services struct {
	Catalog     *service.CatalogService
	Carts       *service.CartService
	Checkouts   *service.CheckoutService
	Ledger      *service.OrderLedger
	Users       *service.UserService
	Session     *service.SessionOrchestrator
	Subscribers *service.SubscriberService
	Ping        func(ctx context.Context) error
}

// RegisterRoutes mounts the API on r. cartWrites guards the cart
// mutations; pass nil to leave them unthrottled.
func RegisterRoutes(r gin.IRouter, s Services, verifier middleware.TokenVerifier, cartWrites gin.HandlerFunc) {
	protect := middleware.Protect(verifier)
	optional := middleware.OptionalAuth(verifier)
	admin := middleware.Admin()
	if cartWrites == nil {
		cartWrites = func(c *gin.Context) { c.Next() }
	}

	r.GET("/healthz", Health(s.Ping))

	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("/register", Register(s.Users))
	users.POST("/login", Login(s.Session))
	users.GET("/profile", protect, Profile(s.Users))

	api.GET("/products", GetProducts(s.Catalog))
	api.GET("/products/:id", GetProduct(s.Catalog))

	cart := api.Group("/cart")
	cart.GET("", optional, GetCart(s.Carts))
	cart.POST("", cartWrites, optional, AddToCart(s.Carts))
	cart.PUT("", cartWrites, optional, UpdateCartItem(s.Carts))
	cart.DELETE("", cartWrites, optional, RemoveCartItem(s.Carts))
	cart.POST("/merge", cartWrites, protect, MergeCart(s.Session))

	checkout := api.Group("/checkout", protect)
	checkout.POST("", CreateCheckout(s.Checkouts))
	checkout.POST("/from-cart", CheckoutFromCart(s.Session))
	checkout.GET("/:id", GetCheckout(s.Checkouts))
	checkout.PUT("/:id/pay", PayCheckout(s.Checkouts))
	checkout.POST("/:id/finalize", FinalizeCheckout(s.Checkouts))

	orders := api.Group("/orders", protect)
	orders.GET("/my-orders", MyOrders(s.Ledger))
	orders.GET("/:id", GetOrder(s.Ledger))

	api.POST("/subscribe", Subscribe(s.Subscribers))
	api.GET("/subscribers", protect, admin, ListSubscribers(s.Subscribers))

	adminAPI := api.Group("/admin", protect, admin)
	adminAPI.GET("/products", GetAllProducts(s.Catalog))
	adminAPI.POST("/products", CreateProduct(s.Catalog))
	adminAPI.PUT("/products/:id", UpdateProduct(s.Catalog))
	adminAPI.DELETE("/products/:id", DeleteProduct(s.Catalog))
	adminAPI.GET("/orders", AdminListOrders(s.Ledger))
	adminAPI.PUT("/orders/:id", UpdateOrderStatus(s.Ledger))
	adminAPI.DELETE("/orders/:id", DeleteOrder(s.Ledger))
}
