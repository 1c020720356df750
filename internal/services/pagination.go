package services

import "bookmarkd/internal/models"

const (
	DefaultPage    = 1
	DefaultPerPage = 5
	MaxPerPage     = 100
)

// Page is one slice of a user's bookmarks plus navigation metadata.
type Page struct {
	Items   []models.Bookmark
	Page    int
	PerPage int
	Pages   int
	Total   int64
	Prev    *int
	Next    *int
	HasPrev bool
	HasNext bool
}

func newPage(items []models.Bookmark, page, perPage int, total int64) *Page {
	p := &Page{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}
	p.Pages = pageCount(total, perPage)

	p.HasPrev = page > 1
	if p.HasPrev {
		prev := page - 1
		p.Prev = &prev
	}
	p.HasNext = page < p.Pages
	if p.HasNext {
		next := page + 1
		p.Next = &next
	}
	return p
}

// pageCount is ceil(total/perPage) without the overflow of total+perPage-1.
func pageCount(total int64, perPage int) int {
	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	return int(pages)
}

// normalizePage rejects non-positive values and caps perPage at MaxPerPage.
func normalizePage(page, perPage int) (int, error) {
	if page < 1 || perPage < 1 {
		return 0, ErrPageNotFound
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return perPage, nil
}
