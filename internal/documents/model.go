package documents

import (
	"time"

	"docextract-backend/internal/extract"
)

// Status tracks where a document is in the extraction lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// Document is one processed extraction item owned by a user.
// Format is nil for content handled by the HTML fallback.
// ExtractedText is nil when nothing was extracted, which is distinct from "".
type Document struct {
	ID            int64
	UserID        int64
	FilePath      string
	Format        *extract.Format
	ExtractedText *string
	Status        Status
	UploadedAt    time.Time
}
