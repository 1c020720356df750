package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookmarkd/internal/config"
	"bookmarkd/internal/middleware"
	"bookmarkd/internal/repository"
	"bookmarkd/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestHandler(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	cfg := config.Config{
		DatabaseURL:     "sqlite://:memory:",
		JWTSecretKey:    "test-secret-12345678901234567890123456789012",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		PublicBaseURL:   "https://sho.rt",
	}

	db, err := repository.InitDB(cfg)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(context.Background(), db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens := services.NewTokenService(cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	auth := services.NewAuthService(db, tokens)
	cache := repository.NewRedisLinkCache(nil, time.Minute)
	bookmarks := services.NewBookmarkService(db, services.NewShortenerService(10), cache, logger)
	audit := services.NewAuditService(db, logger, nil)
	qr := services.NewQRService()

	h := NewHandler(cfg, logger, auth, bookmarks, tokens, audit, qr, middleware.NewMetrics())
	return h, db
}

func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return h.SetupRouter(nil)
}

func doRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reader = bytes.NewBuffer(jsonBody)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// registerAndLogin creates a user and returns its access and refresh tokens.
func registerAndLogin(t *testing.T, r http.Handler, username string) (string, string) {
	t.Helper()
	email := username + "@example.com"
	w := doRequest(r, "POST", "/api/v1/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(r, "POST", "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	user := decode(t, w)["user"].(map[string]interface{})
	return user["access"].(string), user["refresh"].(string)
}
