package repositories

import (
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/pagination"
)

// NewPage trims a result fetched with limit+1 rows down to limit and sets the
// next-page token from the last kept item when more rows exist.
func NewPage[T any](items []T, limit int, key func(T) pagination.Cursor) (*models.Page[T], error) {
	page := &models.Page[T]{Data: items}
	if page.Data == nil {
		page.Data = []T{}
	}
	if limit > 0 && len(page.Data) > limit {
		page.Data = page.Data[:limit]
		token, err := pagination.Encode(key(page.Data[limit-1]))
		if err != nil {
			return nil, err
		}
		page.LastKey = token
	}
	page.Count = len(page.Data)
	return page, nil
}
