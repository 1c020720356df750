package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"bookmarkd/internal/models"

	"github.com/mssola/user_agent"
	"gorm.io/gorm"
)

const (
	ActionRegister       = "REGISTER"
	ActionLogin          = "LOGIN"
	ActionLoginFailed    = "LOGIN_FAILED"
	ActionCreateBookmark = "CREATE_BOOKMARK"
	ActionUpdateBookmark = "UPDATE_BOOKMARK"
	ActionDeleteBookmark = "DELETE_BOOKMARK"
)

// AuditService writes audit entries from a buffered channel so request
// handlers never wait on the audit table.
type AuditService struct {
	db      *gorm.DB
	logger  *slog.Logger
	geo     CountryLocator
	channel chan models.AuditLog
}

// NewAuditService builds the audit writer; geo may be nil, in which case
// entries carry no country.
func NewAuditService(db *gorm.DB, logger *slog.Logger, geo CountryLocator) *AuditService {
	return &AuditService{
		db:      db,
		logger:  logger,
		geo:     geo,
		channel: make(chan models.AuditLog, 100),
	}
}

func (s *AuditService) Start(ctx context.Context) {
	s.logger.Info("Audit worker starting")
	for {
		select {
		case entry := <-s.channel:
			if s.geo != nil && entry.IPAddress != "" {
				entry.Country = s.geo.Country(entry.IPAddress)
			}
			if err := s.db.Create(&entry).Error; err != nil {
				s.logger.Error("Failed to write audit log", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("Audit worker stopping")
			return
		}
	}
}

func (s *AuditService) LogAction(userID *uint, action, entityID string, details interface{}, ip, userAgent string) {
	var detailText string
	if details != nil {
		detailBytes, _ := json.Marshal(details)
		detailText = string(detailBytes)
	}

	entry := models.AuditLog{
		UserID:    userID,
		Action:    action,
		EntityID:  entityID,
		Details:   detailText,
		IPAddress: ip,
		UserAgent: summarizeUserAgent(userAgent),
		Timestamp: time.Now(),
	}

	select {
	case s.channel <- entry:
	default:
		s.logger.Warn("Audit channel full, dropping log", "action", action)
	}
}

// summarizeUserAgent reduces a raw User-Agent header to "Browser Version (OS)".
func summarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := user_agent.New(raw)
	name, version := ua.Browser()
	summary := strings.TrimSpace(name + " " + version)
	if os := ua.OS(); os != "" {
		summary += " (" + os + ")"
	}
	if ua.Bot() {
		summary = "Bot: " + summary
	}
	if len(summary) > 255 {
		summary = summary[:255]
	}
	return summary
}
