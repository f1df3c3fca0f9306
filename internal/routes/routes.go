package routes

import (
	"net/http"
	"time"

	"cosmetics_back_end/internal/handlers/admin"
	pa "cosmetics_back_end/internal/handlers/payement"
	"cosmetics_back_end/internal/handlers/product"
	"cosmetics_back_end/internal/handlers/user"
	"cosmetics_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers regroupe les dépendances HTTP construites dans main.
type Handlers struct {
	Product *product.Handler
	User    *user.Handler
	Payment *pa.Handler
	Admin   *admin.Handler
	Auth    *middleware.Auth
	Limiter *middleware.RateLimiter

	AllowedOrigins []string
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     h.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Webhook Stripe : hors rate limit, signature vérifiée
	r.POST("/api/webhooks/stripe", h.Payment.StripeWebhook)

	api := r.Group("/api", h.Limiter.API())

	// Catalogue
	api.GET("/categories", h.Product.ListCategories)
	api.GET("/products", h.Product.ListProducts)
	api.GET("/products/search", h.Product.SearchProducts)
	api.GET("/products/:id", h.Product.GetProduct)

	// Devis de livraison
	shipping := api.Group("/shipping", h.Limiter.Shipping())
	shipping.GET("/calculate", h.Payment.CalculateShipping)
	shipping.POST("/calculate", h.Payment.CalculateShipping)

	// Authentification
	api.POST("/auth/register", h.User.Register)
	api.POST("/auth/login", h.Limiter.Login(), h.User.Login)

	authed := api.Group("", h.Auth.Required())
	authed.POST("/auth/logout", h.User.Logout)
	authed.GET("/auth/me", h.User.Me)

	// Panier
	authed.GET("/cart", h.User.GetCart)
	authed.POST("/cart/items", h.User.AddToCart)
	authed.PUT("/cart/items/:productId", h.User.UpdateCartItem)
	authed.DELETE("/cart/items/:productId", h.User.RemoveFromCart)
	authed.DELETE("/cart", h.User.ClearCart)
	authed.GET("/cart/ws", h.User.CartWebSocket)

	// Checkout
	authed.POST("/checkout/shipping-options", h.Payment.ShippingOptions)
	authed.POST("/checkout", h.Payment.Checkout)
	authed.GET("/checkout/confirm", h.Payment.ConfirmPayment)

	// Commandes client
	authed.GET("/orders", h.User.ListOrders)
	authed.GET("/orders/:id", h.User.GetOrder)

	// Back-office
	adm := authed.Group("/admin", middleware.RequireAdmin, middleware.AdminAudit())
	adm.GET("/users", h.Admin.ListUsers)
	adm.PUT("/users/:id/role", h.Admin.UpdateUserRole)
	adm.DELETE("/users/:id", h.Admin.DeleteUser)

	adm.POST("/products", h.Admin.CreateProduct)
	adm.PUT("/products/:id", h.Admin.UpdateProduct)
	adm.DELETE("/products/:id", h.Admin.DeleteProduct)
	adm.POST("/products/:id/image", h.Admin.UploadProductImage)

	adm.POST("/categories", h.Admin.CreateCategory)

	adm.GET("/orders", h.Admin.ListOrders)
	adm.PUT("/orders/:id/status", h.Admin.UpdateOrderStatus)

	adm.GET("/stats", h.Admin.GetStats)
}
