package documents

import (
	"context"
	"time"
)

// Service contains business logic for documents.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// Record persists a processed item. UploadedAt defaults to now.
func (s *Service) Record(ctx context.Context, doc Document) (Document, error) {
	if doc.UserID <= 0 || doc.FilePath == "" {
		return Document{}, ErrInvalidInput
	}
	if doc.Status == "" {
		doc.Status = StatusPending
	}
	if !doc.Status.Valid() {
		return Document{}, ErrInvalidInput
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = s.now().UTC()
	}
	return s.Repo.Create(ctx, doc)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (Document, error) {
	if userID <= 0 || id <= 0 {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]Document, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
