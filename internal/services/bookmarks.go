package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bookmarkd/internal/models"

	"gorm.io/gorm"
)

// LinkCache holds short code -> target url for the public redirect path.
type LinkCache interface {
	Get(ctx context.Context, shortCode string) (string, bool, error)
	Set(ctx context.Context, shortCode, url string) error
	Delete(ctx context.Context, shortCode string) error
}

type BookmarkInput struct {
	URL  string
	Body string
}

type BookmarkService struct {
	db        *gorm.DB
	shortener *ShortenerService
	cache     LinkCache
	logger    *slog.Logger
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (noopCache) Set(context.Context, string, string) error         { return nil }
func (noopCache) Delete(context.Context, string) error              { return nil }

func NewBookmarkService(db *gorm.DB, shortener *ShortenerService, cache LinkCache, logger *slog.Logger) *BookmarkService {
	if cache == nil {
		cache = noopCache{}
	}
	return &BookmarkService{
		db:        db,
		shortener: shortener,
		cache:     cache,
		logger:    logger,
	}
}

func validateURL(raw string) error {
	if err := validate.Var(raw, "required,http_url"); err != nil {
		return invalid("Enter valid url")
	}
	return nil
}

// Create stores a bookmark for userID. The url must be unique across all
// users' bookmarks.
func (s *BookmarkService) Create(ctx context.Context, userID uint, in BookmarkInput) (*models.Bookmark, error) {
	if err := validateURL(in.URL); err != nil {
		return nil, err
	}

	taken, err := urlTaken(ctx, s.db, in.URL, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrURLExists
	}

	bookmark := models.Bookmark{
		URL:    in.URL,
		Body:   in.Body,
		UserID: userID,
	}
	if err := s.shortener.Insert(ctx, s.db, &bookmark); err != nil {
		return nil, err
	}
	return &bookmark, nil
}

func (s *BookmarkService) List(ctx context.Context, userID uint, page, perPage int) (*Page, error) {
	perPage, err := normalizePage(page, perPage)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.Bookmark{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count bookmarks: %w", err)
	}
	// Only page 1 may be empty; checking before the offset keeps it in range.
	if page != 1 && page > pageCount(total, perPage) {
		return nil, ErrPageNotFound
	}

	var items []models.Bookmark
	err = q.Order("id").Offset((page - 1) * perPage).Limit(perPage).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	return newPage(items, page, perPage, total), nil
}

func findOwned(db *gorm.DB, userID, id uint) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := db.Where("user_id = ? AND id = ?", userID, id).First(&bookmark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookmarkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find bookmark: %w", err)
	}
	return &bookmark, nil
}

// Get returns the bookmark only when userID owns it.
func (s *BookmarkService) Get(ctx context.Context, userID, id uint) (*models.Bookmark, error) {
	return findOwned(s.db.WithContext(ctx), userID, id)
}

// Update overwrites url and body with the non-empty fields of in. The short
// code never changes.
func (s *BookmarkService) Update(ctx context.Context, userID, id uint, in BookmarkInput) (*models.Bookmark, error) {
	var bookmark *models.Bookmark
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		bookmark, err = findOwned(tx, userID, id)
		if err != nil {
			return err
		}

		if in.URL != "" {
			if err := validateURL(in.URL); err != nil {
				return err
			}
			taken, err := urlTaken(ctx, tx, in.URL, bookmark.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrURLExists
			}
			bookmark.URL = in.URL
		}
		if in.Body != "" {
			bookmark.Body = in.Body
		}

		return tx.Model(bookmark).Select("url", "body", "updated_at").Updates(bookmark).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrURLExists
		}
		return nil, err
	}

	s.evict(ctx, bookmark.ShortURL)
	return bookmark, nil
}

// Delete permanently removes the bookmark when userID owns it.
func (s *BookmarkService) Delete(ctx context.Context, userID, id uint) error {
	var shortURL string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookmark, err := findOwned(tx, userID, id)
		if err != nil {
			return err
		}
		shortURL = bookmark.ShortURL
		return tx.Delete(bookmark).Error
	})
	if err != nil {
		return err
	}

	s.evict(ctx, shortURL)
	return nil
}

func (s *BookmarkService) Stats(ctx context.Context, userID uint) ([]models.BookmarkStat, error) {
	stats := []models.BookmarkStat{}
	err := s.db.WithContext(ctx).Model(&models.Bookmark{}).
		Select("id", "url", "short_url", "visits").
		Where("user_id = ?", userID).
		Order("id").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("bookmark stats: %w", err)
	}
	return stats, nil
}

// Visit counts one visit of shortCode and returns the url to redirect to.
func (s *BookmarkService) Visit(ctx context.Context, shortCode string) (string, error) {
	target, cached, err := s.cache.Get(ctx, shortCode)
	if err != nil {
		s.logger.Warn("Link cache lookup failed", "short_url", shortCode, "error", err)
		cached = false
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Bookmark{}).
			Where("short_url = ?", shortCode).
			Update("visits", gorm.Expr("visits + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("count visit: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrBookmarkNotFound
		}
		if cached {
			return nil
		}

		var bookmark models.Bookmark
		if err := tx.Select("url").Where("short_url = ?", shortCode).First(&bookmark).Error; err != nil {
			return fmt.Errorf("resolve short url: %w", err)
		}
		target = bookmark.URL
		return nil
	})
	if errors.Is(err, ErrBookmarkNotFound) && cached {
		s.evict(ctx, shortCode)
	}
	if err != nil {
		return "", err
	}

	if !cached {
		if err := s.cache.Set(ctx, shortCode, target); err != nil {
			s.logger.Warn("Link cache write failed", "short_url", shortCode, "error", err)
		}
	}
	return target, nil
}

func (s *BookmarkService) evict(ctx context.Context, shortCode string) {
	if shortCode == "" {
		return
	}
	if err := s.cache.Delete(ctx, shortCode); err != nil {
		s.logger.Warn("Link cache eviction failed", "short_url", shortCode, "error", err)
	}
}
