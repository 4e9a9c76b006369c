package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/ovenlight/bakery-api/internal/handlers"
	"github.com/ovenlight/bakery-api/internal/middleware"
)

// CORSMiddleware tells the browser the storefront origin may talk to us.
func CORSMiddleware() gin.HandlerFunc {
	allowedOrigin := os.Getenv("CORS_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:5173"
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight OPTIONS requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// OptionalAuth loads the user ID when a valid bearer token is present but
// never rejects the request. Used on checkout and custom-request intake,
// which serve guests and signed-in customers alike.
func OptionalAuth(h *handlers.Handlers) gin.HandlerFunc {
	authRequired := middleware.AuthMiddleware(h.DB)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authRequired(c)
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// CORS must run before everything else.
	router.Use(CORSMiddleware())

	// Local-dev uploads fallback.
	router.Static("/uploads", "./uploads")

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)

		// --- Storefront Routes (Public) ---
		v1.GET("/products", h.GetProducts)
		v1.GET("/products/:slug", h.GetProductBySlug)
		v1.GET("/products/:slug/reviews", h.GetProductReviews)
		v1.POST("/products/:slug/reviews", h.CreateReview)
		v1.GET("/categories", h.GetCategories)
		v1.GET("/banners", h.GetActiveBanners)
		v1.GET("/testimonials", h.GetTestimonials)
		v1.POST("/testimonials", h.CreateTestimonial)
		v1.GET("/settings", h.GetPublicSettings)
		v1.GET("/orders/track/:code", h.TrackOrder)

		// --- Guest-or-Customer Routes ---
		v1.POST("/checkout", OptionalAuth(h), h.Checkout)
		v1.POST("/custom-requests", OptionalAuth(h), h.CreateCustomRequest)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(h.DB))
		{
			auth.GET("/profile/me", h.GetMe)

			auth.GET("/orders", h.GetMyOrders)
			auth.GET("/orders/:id", h.GetOrderDetails)
			auth.GET("/custom-requests", h.GetMyCustomRequests)

			// Claim a guest order / request by reference code or id.
			auth.POST("/claims", h.ClaimRecord)

			// --- Notification Routes ---
			auth.GET("/notifications", h.GetMyNotifications)
			auth.PATCH("/notifications/read-all", h.MarkAllNotificationsRead)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)
			auth.DELETE("/notifications/:id", h.DeleteNotification)
			auth.DELETE("/notifications", h.DeleteAllNotifications)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.DB))
		admin.Use(middleware.AdminMiddleware(h.DB))
		{
			admin.GET("/stats", h.GetAdminStats)

			admin.GET("/orders", h.GetOrders)
			admin.GET("/orders/:id", h.GetAdminOrderDetails)
			admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)

			admin.GET("/custom-requests", h.GetCustomRequests)
			admin.PATCH("/custom-requests/:id", h.UpdateCustomRequest)
			admin.PATCH("/custom-requests/:id/status", h.UpdateRequestStatus)
			admin.DELETE("/custom-requests/:id", h.DeleteCustomRequest)

			admin.GET("/products", h.GetAllProducts)
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.GET("/reviews", h.GetReviews)
			admin.PATCH("/reviews/:id", h.ApproveReview)
			admin.DELETE("/reviews/:id", h.DeleteReview)

			admin.GET("/testimonials", h.GetAllTestimonials)
			admin.PATCH("/testimonials/:id", h.ApproveTestimonial)
			admin.DELETE("/testimonials/:id", h.DeleteTestimonial)

			admin.GET("/banners", h.GetAllBanners)
			admin.POST("/banners", h.CreateBanner)
			admin.PUT("/banners/:id", h.UpdateBanner)
			admin.DELETE("/banners/:id", h.DeleteBanner)

			admin.GET("/settings", h.GetSettings)
			admin.PATCH("/settings", h.UpdateSettings)

			admin.POST("/upload", h.UploadImage)
		}

		// --- Super Admin-Only Routes ---
		superadmin := v1.Group("/superadmin")
		superadmin.Use(middleware.AuthMiddleware(h.DB))
		superadmin.Use(middleware.SuperAdminMiddleware(h.DB))
		{
			superadmin.GET("/admins", h.ListAdmins)
			superadmin.POST("/admins", h.GrantAdmin)
			superadmin.DELETE("/admins/:id", h.RevokeAdmin)
		}
	}

	return router
}
