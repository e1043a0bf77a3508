package respond

import (
	"github.com/gin-gonic/gin"

	"docextract-backend/internal/shared/telemetry"
)

// ErrorItem is a single entry of the errors array.
type ErrorItem struct {
	Code   string      `json:"code"`
	Detail interface{} `json:"detail,omitempty"`
}

// ErrorResponse is the standardized error envelope.
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Errors  []ErrorItem `json:"errors"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if email := c.GetString("userEmail"); email != "" {
		fields["user_email"] = email
	}
	if userID, ok := c.Get("userId"); ok {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Status:  "error",
		Message: message,
		Errors:  []ErrorItem{{Code: code, Detail: details}},
	})
}
