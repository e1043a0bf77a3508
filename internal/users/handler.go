package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docextract-backend/internal/shared/server/middleware"
	"docextract-backend/internal/shared/server/respond"
)

const accountKey = "account"

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches /me. The group must already run ResolveAccount.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

// ResolveAccount loads the account for the authenticated principal.
// A valid token whose account no longer exists yields 404.
func ResolveAccount(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
			return
		}
		acc, err := svc.GetByEmail(c.Request.Context(), middleware.UserEmailFromContext(c))
		if err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				respond.Error(c, http.StatusNotFound, "not_found", "User not found.", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
			return
		}
		middleware.SetUserID(c, acc.ID)
		c.Set(accountKey, acc)
		c.Next()
	}
}

// AccountFromContext returns the account stored by ResolveAccount.
func AccountFromContext(c *gin.Context) (Account, bool) {
	val, ok := c.Get(accountKey)
	if !ok {
		return Account{}, false
	}
	acc, ok := val.(Account)
	return acc, ok
}

func (h *Handler) me(c *gin.Context) {
	acc, ok := AccountFromContext(c)
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "User not found.", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":        acc.ID,
		"email":     acc.Email,
		"createdAt": acc.CreatedAt,
	})
}
