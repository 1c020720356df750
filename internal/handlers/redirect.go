package handlers

import (
	"errors"
	"net/http"

	"bookmarkd/internal/models"
	"bookmarkd/internal/services"

	"github.com/gin-gonic/gin"
)

// RedirectToURL is public: it counts the visit and sends the caller to the
// bookmark's url.
func (h *Handler) RedirectToURL(c *gin.Context) {
	shortURL := c.Param("short_url")
	if len(shortURL) != models.ShortCodeLength {
		h.NotFound(c)
		return
	}

	target, err := h.bookmarkService.Visit(c.Request.Context(), shortURL)
	if errors.Is(err, services.ErrBookmarkNotFound) {
		h.NotFound(c)
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.metrics.Redirects.Inc()
	c.Redirect(http.StatusFound, target)
}
