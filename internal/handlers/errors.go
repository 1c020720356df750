package handlers

import (
	"errors"
	"net/http"

	"bookmarkd/internal/services"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Something went wrong, we are working on it"

// NotFound answers every unmatched route and missing resource without
// a more specific message.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

// Recover turns a panic into the generic 500 body.
func (h *Handler) Recover(c *gin.Context, recovered any) {
	h.logger.Error("Panic while handling request", "path", c.Request.URL.Path, "panic", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
}

// respondError maps service errors onto status codes. Anything unexpected is
// logged and hidden behind the generic 500 body.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email is taken"})
	case errors.Is(err, services.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Username is taken"})
	case errors.Is(err, services.ErrURLExists):
		c.JSON(http.StatusConflict, gin.H{"error": "URL already exists"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong credentials"})
	case errors.Is(err, services.ErrBookmarkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, services.ErrPageNotFound):
		h.NotFound(c)
	case errors.Is(err, services.ErrShortCodeExhausted):
		h.logger.Error("Short code space exhausted", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No short codes available"})
	default:
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
	}
}
