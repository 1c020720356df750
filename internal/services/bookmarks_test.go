package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"bookmarkd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mapCache struct {
	mu      sync.Mutex
	links   map[string]string
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{links: make(map[string]string)}
}

func (c *mapCache) Get(_ context.Context, code string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return "", false, errors.New("cache down")
	}
	url, ok := c.links[code]
	return url, ok, nil
}

func (c *mapCache) Set(_ context.Context, code, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links[code] = url
	return nil
}

func (c *mapCache) Delete(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.links, code)
	return nil
}

func (c *mapCache) has(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.links[code]
	return ok
}

func setupBookmarkService(t *testing.T) (*BookmarkService, *gorm.DB, *mapCache) {
	db := setupTestDB(t)
	cache := newMapCache()
	return NewBookmarkService(db, NewShortenerService(10), cache, testLogger()), db, cache
}

func TestBookmarkService_Create(t *testing.T) {
	service, db, _ := setupBookmarkService(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		b, err := service.Create(ctx, alice.ID, BookmarkInput{URL: "https://example.com", Body: "note"})
		require.NoError(t, err)
		assert.Len(t, b.ShortURL, 3)
		assert.Equal(t, 0, b.Visits)
		assert.Equal(t, alice.ID, b.UserID)
		assert.Equal(t, "note", b.Body)
	})

	t.Run("Invalid url", func(t *testing.T) {
		for _, raw := range []string{"", "not-a-url", "example.com", "ftp//broken", "https://"} {
			_, err := service.Create(ctx, alice.ID, BookmarkInput{URL: raw})
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr, raw)
		}
	})

	t.Run("Duplicate url conflicts regardless of owner", func(t *testing.T) {
		_, err := service.Create(ctx, alice.ID, BookmarkInput{URL: "https://example.com"})
		assert.ErrorIs(t, err, ErrURLExists)

		_, err = service.Create(ctx, bob.ID, BookmarkInput{URL: "https://example.com"})
		assert.ErrorIs(t, err, ErrURLExists)
	})

	t.Run("Short codes are unique", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			b, err := service.Create(ctx, bob.ID, BookmarkInput{URL: fmt.Sprintf("https://example.com/%d", i)})
			require.NoError(t, err)
			assert.False(t, seen[b.ShortURL])
			seen[b.ShortURL] = true
		}
	})
}

func TestBookmarkService_List(t *testing.T) {
	service, db, _ := setupBookmarkService(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := service.Create(ctx, alice.ID, BookmarkInput{URL: fmt.Sprintf("https://alice.dev/%d", i)})
		require.NoError(t, err)
	}
	_, err := service.Create(ctx, bob.ID, BookmarkInput{URL: "https://bob.dev"})
	require.NoError(t, err)

	t.Run("First page", func(t *testing.T) {
		page, err := service.List(ctx, alice.ID, 1, 5)
		require.NoError(t, err)
		assert.Len(t, page.Items, 5)
		assert.Equal(t, int64(12), page.Total)
		assert.Equal(t, 3, page.Pages)
		assert.Nil(t, page.Prev)
		assert.Equal(t, 2, *page.Next)
		assert.Equal(t, "https://alice.dev/0", page.Items[0].URL)
	})

	t.Run("Last page", func(t *testing.T) {
		page, err := service.List(ctx, alice.ID, 3, 5)
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.False(t, page.HasNext)
		assert.True(t, page.HasPrev)
	})

	t.Run("Scoped to owner", func(t *testing.T) {
		page, err := service.List(ctx, bob.ID, 1, 5)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "https://bob.dev", page.Items[0].URL)
	})

	t.Run("Empty first page is fine", func(t *testing.T) {
		page, err := service.List(ctx, 9999, 1, 5)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 0, page.Pages)
	})

	t.Run("Out of range", func(t *testing.T) {
		_, err := service.List(ctx, alice.ID, 4, 5)
		assert.ErrorIs(t, err, ErrPageNotFound)

		_, err = service.List(ctx, alice.ID, 0, 5)
		assert.ErrorIs(t, err, ErrPageNotFound)

		_, err = service.List(ctx, alice.ID, 1, 0)
		assert.ErrorIs(t, err, ErrPageNotFound)
	})

	t.Run("Huge values do not overflow", func(t *testing.T) {
		page, err := service.List(ctx, alice.ID, 1, math.MaxInt)
		require.NoError(t, err)
		assert.Len(t, page.Items, 12)
		assert.Equal(t, 1, page.Pages)
		assert.Equal(t, MaxPerPage, page.PerPage)

		_, err = service.List(ctx, alice.ID, 3689348814741910324, 5)
		assert.ErrorIs(t, err, ErrPageNotFound)

		_, err = service.List(ctx, alice.ID, math.MaxInt, math.MaxInt)
		assert.ErrorIs(t, err, ErrPageNotFound)
	})
}

func TestBookmarkService_OwnerScoping(t *testing.T) {
	service, db, _ := setupBookmarkService(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	ctx := context.Background()

	b, err := service.Create(ctx, alice.ID, BookmarkInput{URL: "https://alice.dev"})
	require.NoError(t, err)

	_, err = service.Get(ctx, bob.ID, b.ID)
	assert.ErrorIs(t, err, ErrBookmarkNotFound)

	_, err = service.Update(ctx, bob.ID, b.ID, BookmarkInput{URL: "https://bob.dev"})
	assert.ErrorIs(t, err, ErrBookmarkNotFound)

	err = service.Delete(ctx, bob.ID, b.ID)
	assert.ErrorIs(t, err, ErrBookmarkNotFound)

	got, err := service.Get(ctx, alice.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://alice.dev", got.URL)

	_, err = service.Get(ctx, alice.ID, 9999)
	assert.ErrorIs(t, err, ErrBookmarkNotFound)
}

func TestBookmarkService_Update(t *testing.T) {
	service, db, cache := setupBookmarkService(t)
	alice := createTestUser(t, db, "alice")
	ctx := context.Background()

	b, err := service.Create(ctx, alice.ID, BookmarkInput{URL: "https://old.dev", Body: "old"})
	require.NoError(t, err)
	other, err := service.Create(ctx, alice.ID, BookmarkInput{URL: "https://other.dev"})
	require.NoError(t, err)

	t.Run("Invalid url leaves the row unchanged", func(t *testing.T) {
		_, err := service.Update(ctx, alice.ID, b.ID, BookmarkInput{URL: "not-a-url"})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)

		got, _ := service.Get(ctx, alice.ID, b.ID)
		assert.Equal(t, "https://old.dev", got.URL)
	})

	t.Run("Body only", func(t *testing.T) {
		got, err := service.Update(ctx, alice.ID, b.ID, BookmarkInput{Body: "new"})
		require.NoError(t, err)
		assert.Equal(t, "https://old.dev", got.URL)
		assert.Equal(t, "new", got.Body)
	})

	t.Run("Url and body", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, b.ShortURL, "https://old.dev"))

		got, err := service.Update(ctx, alice.ID, b.ID, BookmarkInput{URL: "https://new.dev", Body: "newer"})
		require.NoError(t, err)
		assert.Equal(t, "https://new.dev", got.URL)
		assert.Equal(t, "newer", got.Body)
		assert.Equal(t, b.ShortURL, got.ShortURL)
		assert.False(t, cache.has(b.ShortURL))

		stored, _ := service.Get(ctx, alice.ID, b.ID)
		assert.Equal(t, "https://new.dev", stored.URL)
		assert.Equal(t, b.ShortURL, stored.ShortURL)
	})

	t.Run("Same url is not a conflict", func(t *testing.T) {
		_, err := service.Update(ctx, alice.ID, b.ID, BookmarkInput{URL: "https://new.dev"})
		assert.NoError(t, err)
	})

	t.Run("Url taken by another bookmark", func(t *testing.T) {
		_, err := service.Update(ctx, alice.ID, b.ID, BookmarkInput{URL: other.URL})
		assert.ErrorIs(t, err, ErrURLExists)
	})
}

func TestBookmarkService_Delete(t *testing.T) {
	service, db, cache := setupBookmarkService(t)
	alice := createTestUser(t, db, "alice")
	ctx := context.Background()

	b, err := service.Create(ctx, alice.ID, BookmarkInput{URL: "https://gone.dev"})
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, b.ShortURL, b.URL))

	require.NoError(t, service.Delete(ctx, alice.ID, b.ID))
	assert.False(t, cache.has(b.ShortURL))

	var count int64
	db.Unscoped().Model(&models.Bookmark{}).Where("id = ?", b.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	assert.ErrorIs(t, service.Delete(ctx, alice.ID, b.ID), ErrBookmarkNotFound)

	// The url is free again
	_, err = service.Create(ctx, alice.ID, BookmarkInput{URL: "https://gone.dev"})
	assert.NoError(t, err)
}

func TestBookmarkService_StatsAndVisit(t *testing.T) {
	service, db, cache := setupBookmarkService(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	ctx := context.Background()

	first, err := service.Create(ctx, alice.ID, BookmarkInput{URL: "https://one.dev"})
	require.NoError(t, err)
	second, err := service.Create(ctx, alice.ID, BookmarkInput{URL: "https://two.dev"})
	require.NoError(t, err)
	_, err = service.Create(ctx, bob.ID, BookmarkInput{URL: "https://bob.dev"})
	require.NoError(t, err)

	t.Run("Unknown short code", func(t *testing.T) {
		_, err := service.Visit(ctx, "zzz")
		assert.ErrorIs(t, err, ErrBookmarkNotFound)
	})

	t.Run("Visits increment by one and populate the cache", func(t *testing.T) {
		target, err := service.Visit(ctx, first.ShortURL)
		require.NoError(t, err)
		assert.Equal(t, "https://one.dev", target)
		assert.True(t, cache.has(first.ShortURL))

		target, err = service.Visit(ctx, first.ShortURL)
		require.NoError(t, err)
		assert.Equal(t, "https://one.dev", target)

		got, _ := service.Get(ctx, alice.ID, first.ID)
		assert.Equal(t, 2, got.Visits)
		untouched, _ := service.Get(ctx, alice.ID, second.ID)
		assert.Equal(t, 0, untouched.Visits)
	})

	t.Run("Stale cache entry for a deleted bookmark", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "old", "https://stale.dev"))
		_, err := service.Visit(ctx, "old")
		assert.ErrorIs(t, err, ErrBookmarkNotFound)
		assert.False(t, cache.has("old"))
	})

	t.Run("Cache failure falls back to the database", func(t *testing.T) {
		cache.failGet = true
		defer func() { cache.failGet = false }()

		target, err := service.Visit(ctx, second.ShortURL)
		require.NoError(t, err)
		assert.Equal(t, "https://two.dev", target)
	})

	t.Run("Stats", func(t *testing.T) {
		stats, err := service.Stats(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, stats, 2)
		assert.Equal(t, models.BookmarkStat{ID: first.ID, URL: "https://one.dev", ShortURL: first.ShortURL, Visits: 2}, stats[0])
		assert.Equal(t, 1, stats[1].Visits)

		empty, err := service.Stats(ctx, 9999)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})
}

func TestNewBookmarkService_NilCache(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	service := NewBookmarkService(db, NewShortenerService(10), nil, testLogger())
	ctx := context.Background()

	b, err := service.Create(ctx, alice.ID, BookmarkInput{URL: "https://nocache.dev"})
	require.NoError(t, err)

	target, err := service.Visit(ctx, b.ShortURL)
	assert.NoError(t, err)
	assert.Equal(t, "https://nocache.dev", target)
}
