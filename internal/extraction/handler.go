package extraction

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docextract-backend/internal/notify"
	"docextract-backend/internal/shared/server/respond"
	"docextract-backend/internal/users"
)

// Handler exposes the batch extraction endpoint.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches POST /documents/extract. The group must run users.ResolveAccount.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/extract", h.extract)
}

type extractRequest struct {
	FilePathsOrURLs []string `json:"file_paths_or_urls"`
}

func (h *Handler) extract(c *gin.Context) {
	acc, ok := users.AccountFromContext(c)
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "User not found.", nil)
		return
	}

	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.FilePathsOrURLs) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", ErrEmptyBatch.Error(), nil)
		return
	}
	c.Set("batchSize", len(req.FilePathsOrURLs))

	results, err := h.Svc.ProcessBatch(c.Request.Context(), acc, req.FilePathsOrURLs)
	if err != nil {
		var nerr *notify.NotifyError
		switch {
		case errors.Is(err, ErrEmptyBatch):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.As(err, &nerr):
			respond.Error(c, http.StatusInternalServerError, "notify_failed", "Extraction completed but the notification could not be sent.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Error processing files.", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, results)
}
