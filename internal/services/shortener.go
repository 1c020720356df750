package services

import (
	"context"
	"fmt"

	"bookmarkd/internal/models"
	"bookmarkd/pkg/utils"

	"gorm.io/gorm"
)

const defaultShortCodeAttempts = 64

// ShortenerService assigns short codes to new bookmarks. Uniqueness is
// enforced by the unique index on short_url; a conflicting insert is retried
// with a fresh code.
type ShortenerService struct {
	codeGenerator func(int) string
	maxAttempts   int
}

func NewShortenerService(maxAttempts int) *ShortenerService {
	if maxAttempts < 1 {
		maxAttempts = defaultShortCodeAttempts
	}
	return &ShortenerService{
		codeGenerator: utils.GenerateShortCode,
		maxAttempts:   maxAttempts,
	}
}

// Insert stores b with a freshly generated short code. A unique violation on
// the url column is reported as ErrURLExists.
func (s *ShortenerService) Insert(ctx context.Context, db *gorm.DB, b *models.Bookmark) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		b.ID = 0
		b.ShortURL = s.codeGenerator(models.ShortCodeLength)

		err := db.WithContext(ctx).Create(b).Error
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return fmt.Errorf("insert bookmark: %w", err)
		}

		taken, err := urlTaken(ctx, db, b.URL, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrURLExists
		}
	}

	b.ShortURL = ""
	return fmt.Errorf("%w after %d attempts", ErrShortCodeExhausted, s.maxAttempts)
}

// urlTaken reports whether a bookmark other than exceptID already uses url.
func urlTaken(ctx context.Context, db *gorm.DB, url string, exceptID uint) (bool, error) {
	var count int64
	q := db.WithContext(ctx).Model(&models.Bookmark{}).Where("url = ?", url)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check url: %w", err)
	}
	return count > 0, nil
}
