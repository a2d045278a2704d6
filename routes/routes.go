package routes

import (
	"food-ordering-api/handlers"
	"food-ordering-api/middleware"

	"github.com/gin-gonic/gin"
)

type Options struct {
	// UploadDir is served read-only under /uploads.
	UploadDir string
	// AuthLimiter throttles credential endpoints; nil disables it.
	AuthLimiter *middleware.RateLimiter
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, opts Options) {
	r.GET("/health", handlers.Health)
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	auth := middleware.AuthRequired(h.Secret)
	limit := func(c *gin.Context) { c.Next() }
	if opts.AuthLimiter != nil {
		limit = opts.AuthLimiter.Limit()
	}

	api := r.Group("/api/v1")

	// ── Users ──────────────────────────────────────────────────────
	user := api.Group("/user")
	{
		user.POST("/signup", limit, h.Signup)
		user.POST("/login", limit, h.Login)
		user.POST("/logout", h.Logout)
		user.POST("/forgot-password", limit, h.ForgotPassword)
		user.POST("/reset-password/:token", h.ResetPassword)
		user.GET("/check-auth", auth, h.CheckAuth)
		user.PUT("/profile/update", auth, h.UpdateProfile)
	}

	// ── Menus ──────────────────────────────────────────────────────
	menu := api.Group("/menu")
	menu.Use(auth)
	{
		menu.POST("/", h.AddMenu)
		menu.PUT("/:id", h.EditMenu)
	}

	// ── Restaurants ────────────────────────────────────────────────
	restaurant := api.Group("/restaurant")
	{
		restaurant.POST("/", auth, h.CreateRestaurant)
		restaurant.GET("/", auth, h.GetRestaurant)
		restaurant.PUT("/", auth, h.UpdateRestaurant)
		restaurant.GET("/order", auth, h.GetRestaurantOrders)
		restaurant.PUT("/order/:orderId/status", auth, h.UpdateOrderStatus)

		// Public
		restaurant.GET("/search/:searchText", h.SearchRestaurant)
		restaurant.GET("/:id", h.GetSingleRestaurant)
	}

	// ── Orders ─────────────────────────────────────────────────────
	order := api.Group("/order")
	{
		order.POST("/checkout/create-checkout-session", auth, h.CreateCheckoutSession)
		order.GET("/", auth, h.GetOrders)
		order.GET("/state-machine", handlers.GetStateMachineInfo)
		// Authenticated by the provider signature, not the session cookie
		order.POST("/webhook", h.StripeWebhook)
	}
}
