package router

import (
	"net/http"

	"github.com/giftwish/giftwish-backend/config"
	"github.com/giftwish/giftwish-backend/internal/app/controller"
	"github.com/giftwish/giftwish-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController        *controller.AuthController
	wishlistController    *controller.WishlistController
	itemController        *controller.ItemController
	reservationController *controller.ReservationController
	previewController     *controller.PreviewController
	uploadController      *controller.UploadController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	wishlistController *controller.WishlistController,
	itemController *controller.ItemController,
	reservationController *controller.ReservationController,
	previewController *controller.PreviewController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		wishlistController:    wishlistController,
		itemController:        itemController,
		reservationController: reservationController,
		previewController:     previewController,
		uploadController:      uploadController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "GIFTWISH API is running",
		})
	})

	// viewers connect unauthenticated; events carry no payload
	router.GET("/ws/wishlists/:id", r.wishlistController.WatchWishlist)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/forgot-password", r.authController.ForgotPassword)
			auth.POST("/reset-password", r.authController.ResetPassword)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		wishlists := v1.Group("/wishlists")
		{
			// the public snapshot is keyed by slug, not id, and needs no auth
			wishlists.GET("/public/:slug", r.wishlistController.GetPublicWishlist)

			wishlists.GET("", r.authMiddleware.Authenticate(), r.wishlistController.GetWishlists)
			wishlists.POST("", r.authMiddleware.Authenticate(), r.wishlistController.CreateWishlist)
			wishlists.GET("/:id", r.authMiddleware.Authenticate(), r.wishlistController.GetWishlist)
			wishlists.PATCH("/:id", r.authMiddleware.Authenticate(), r.wishlistController.UpdateWishlist)
			wishlists.DELETE("/:id", r.authMiddleware.Authenticate(), r.wishlistController.DeleteWishlist)
			wishlists.GET("/:id/export", r.authMiddleware.Authenticate(), r.wishlistController.ExportWishlist)
			wishlists.POST("/:id/items", r.authMiddleware.Authenticate(), r.itemController.CreateItem)
		}

		items := v1.Group("/items")
		{
			items.PATCH("/:id", r.authMiddleware.Authenticate(), r.itemController.UpdateItem)
			items.DELETE("/:id", r.authMiddleware.Authenticate(), r.itemController.DeleteItem)
			items.PUT("/:id/availability", r.authMiddleware.Authenticate(), r.reservationController.SetAvailability)

			// guest mutations: no account needed, just the item id
			items.POST("/:id/reserve", r.reservationController.Reserve)
			items.POST("/:id/contributions", r.reservationController.Contribute)
		}

		v1.GET("/preview", r.previewController.GetPreview)

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
