package documents

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Repo defines persistence operations for documents.
// Create assigns the ID and returns the stored document.
type Repo interface {
	Create(ctx context.Context, doc Document) (Document, error)
	GetByID(ctx context.Context, userID, id int64) (Document, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Document, error)
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// normalizePage applies the listing defaults shared by every Repo.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
