package handlers

import (
	"net/http"

	"bookmarkd/internal/middleware"
	"bookmarkd/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *middleware.IPRateLimiter) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Logger(), gin.CustomRecovery(h.Recover))
	r.Use(h.metrics.Middleware())
	if rateLimiter != nil {
		r.Use(middleware.RateLimit(rateLimiter))
	}

	r.NoRoute(h.NotFound)
	r.NoMethod(h.NotFound)

	// Routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", h.metrics.Handler())
	r.GET(apiDocsPath+"/*any", h.APIDocs())

	accessRequired := middleware.RequireToken(h.tokenService, services.AccessToken)
	refreshRequired := middleware.RequireToken(h.tokenService, services.RefreshToken)

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.LoginUser)
		auth.GET("/me", accessRequired, h.Me)
		auth.GET("/token/refresh", refreshRequired, h.RefreshToken)
	}

	bookmarks := api.Group("/bookmarks")
	bookmarks.Use(accessRequired)
	{
		bookmarks.POST("/", h.CreateBookmark)
		bookmarks.GET("/", h.ListBookmarks)
		bookmarks.GET("/stats", h.BookmarkStats)
		bookmarks.GET("/:id", h.GetBookmark)
		bookmarks.PUT("/:id", h.UpdateBookmark)
		bookmarks.PATCH("/:id", h.UpdateBookmark)
		bookmarks.DELETE("/:id", h.DeleteBookmark)
		bookmarks.GET("/:id/qr", h.BookmarkQR)
	}

	// Catch-all Redirects
	r.GET("/:short_url", h.RedirectToURL)

	return r
}
