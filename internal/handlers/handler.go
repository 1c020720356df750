package handlers

import (
	"log/slog"

	"bookmarkd/internal/config"
	"bookmarkd/internal/middleware"
	"bookmarkd/internal/services"
)

type Handler struct {
	cfg             config.Config
	logger          *slog.Logger
	authService     *services.AuthService
	bookmarkService *services.BookmarkService
	tokenService    *services.TokenService
	auditService    *services.AuditService
	qrService       *services.QRService
	metrics         *middleware.Metrics
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	authService *services.AuthService,
	bookmarkService *services.BookmarkService,
	tokenService *services.TokenService,
	auditService *services.AuditService,
	qrService *services.QRService,
	metrics *middleware.Metrics,
) *Handler {
	return &Handler{
		cfg:             cfg,
		logger:          logger,
		authService:     authService,
		bookmarkService: bookmarkService,
		tokenService:    tokenService,
		auditService:    auditService,
		qrService:       qrService,
		metrics:         metrics,
	}
}
