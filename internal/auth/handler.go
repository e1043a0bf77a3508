package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	sharedauth "docextract-backend/internal/shared/auth"
	"docextract-backend/internal/shared/server/respond"
	"docextract-backend/internal/users"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the /auth routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/signup", h.signup)
	g.POST("/signin", h.signin)
	g.POST("/refresh", h.refresh)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	acc, err := h.Svc.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrAccountExists):
			respond.Error(c, http.StatusBadRequest, "account_exists", "User with email "+strings.TrimSpace(req.Email)+" already exists.", nil)
		case errors.Is(err, users.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create account", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"email":   acc.Email,
		"message": "Account successfully created.",
	})
}

func (h *Handler) signin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	acc, tokens, err := h.Svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidLogin) {
			respond.Error(c, http.StatusNotFound, "invalid_login", "Invalid email or password.", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal Server Error", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"token_type":    "bearer",
		"email":         acc.Email,
	})
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	acc, access, err := h.Svc.Refresh(c.Request.Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		switch {
		case errors.Is(err, sharedauth.ErrMissingCredential):
			respond.Error(c, http.StatusUnauthorized, "missing_credential", "Refresh token is missing.", nil)
		case errors.Is(err, sharedauth.ErrInvalidCredential):
			respond.Error(c, http.StatusUnauthorized, "invalid_credential", "Invalid or expired token.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal Server Error", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"access_token": access,
		"token_type":   "bearer",
		"email":        acc.Email,
	})
}
