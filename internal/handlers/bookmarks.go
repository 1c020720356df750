package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookmarkd/internal/models"
	"bookmarkd/internal/services"

	"github.com/gin-gonic/gin"
)

type BookmarkRequest struct {
	URL  string `json:"url"`
	Body string `json:"body"`
}

type BookmarkResponse struct {
	ID        uint      `json:"id"`
	URL       string    `json:"url"`
	ShortURL  string    `json:"short_url"`
	Visits    int       `json:"visits"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Pages      int   `json:"pages"`
	TotalCount int64 `json:"total_count"`
	Prev       *int  `json:"prev"`
	NextPage   *int  `json:"next_page"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

func newBookmarkResponse(b *models.Bookmark) BookmarkResponse {
	return BookmarkResponse{
		ID:        b.ID,
		URL:       b.URL,
		ShortURL:  b.ShortURL,
		Visits:    b.Visits,
		Body:      b.Body,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// bookmarkID parses the :id path parameter; anything but a positive integer
// is treated as an unknown route.
func bookmarkID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func (h *Handler) CreateBookmark(c *gin.Context) {
	var req BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	userID := currentUser(c)
	bookmark, err := h.bookmarkService.Create(c.Request.Context(), userID, services.BookmarkInput{
		URL:  req.URL,
		Body: req.Body,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.auditService.LogAction(&userID, services.ActionCreateBookmark, bookmark.ShortURL, map[string]string{
		"url": bookmark.URL,
	}, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, newBookmarkResponse(bookmark))
}

func (h *Handler) ListBookmarks(c *gin.Context) {
	page := queryInt(c, "page", services.DefaultPage)
	perPage := queryInt(c, "per_page", services.DefaultPerPage)

	result, err := h.bookmarkService.List(c.Request.Context(), currentUser(c), page, perPage)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]BookmarkResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, newBookmarkResponse(&result.Items[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"bookmarks": items,
		"meta": PageMeta{
			Page:       result.Page,
			Pages:      result.Pages,
			TotalCount: result.Total,
			Prev:       result.Prev,
			NextPage:   result.Next,
			HasNext:    result.HasNext,
			HasPrev:    result.HasPrev,
		},
	})
}

func (h *Handler) GetBookmark(c *gin.Context) {
	id, ok := bookmarkID(c)
	if !ok {
		h.NotFound(c)
		return
	}

	bookmark, err := h.bookmarkService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmark": newBookmarkResponse(bookmark)})
}

// UpdateBookmark serves both PUT and PATCH.
func (h *Handler) UpdateBookmark(c *gin.Context) {
	id, ok := bookmarkID(c)
	if !ok {
		h.NotFound(c)
		return
	}

	var req BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	userID := currentUser(c)
	bookmark, err := h.bookmarkService.Update(c.Request.Context(), userID, id, services.BookmarkInput{
		URL:  req.URL,
		Body: req.Body,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.auditService.LogAction(&userID, services.ActionUpdateBookmark, bookmark.ShortURL, req, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{"bookmark": newBookmarkResponse(bookmark)})
}

func (h *Handler) DeleteBookmark(c *gin.Context) {
	id, ok := bookmarkID(c)
	if !ok {
		h.NotFound(c)
		return
	}

	userID := currentUser(c)
	if err := h.bookmarkService.Delete(c.Request.Context(), userID, id); err != nil {
		h.respondError(c, err)
		return
	}

	h.auditService.LogAction(&userID, services.ActionDeleteBookmark, strconv.FormatUint(uint64(id), 10), nil, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{})
}

func (h *Handler) BookmarkStats(c *gin.Context) {
	stats, err := h.bookmarkService.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarks": stats})
}

// BookmarkQR renders the public short link of an owned bookmark as PNG, or
// SVG with ?format=svg.
func (h *Handler) BookmarkQR(c *gin.Context) {
	id, ok := bookmarkID(c)
	if !ok {
		h.NotFound(c)
		return
	}

	bookmark, err := h.bookmarkService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	opts := services.QROptions{
		Content: h.publicLink(c, bookmark.ShortURL),
		Size:    queryInt(c, "size", services.DefaultQRSize),
		FgColor: c.Query("fg"),
		BgColor: c.Query("bg"),
	}

	if c.Query("format") == "svg" {
		svg, err := h.qrService.GenerateQRCodeSVG(opts)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
		return
	}

	png, err := h.qrService.GenerateQRCode(opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) publicLink(c *gin.Context, shortURL string) string {
	if h.cfg.PublicBaseURL != "" {
		return strings.TrimRight(h.cfg.PublicBaseURL, "/") + "/" + shortURL
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/" + shortURL
}
