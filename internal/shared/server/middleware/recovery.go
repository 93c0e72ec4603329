package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"shopping-buddy/internal/shared/server/respond"
	"shopping-buddy/internal/shared/telemetry"
)

// Recovery turns a handler panic into the same 500 body the storefront
// returns for unexpected errors. The panic value stays in the log.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			}
			if customerID := c.GetString(CustomerIDKey); customerID != "" {
				fields["customer_id"] = customerID
			}
			if backend := c.GetString(BackendKey); backend != "" {
				fields["backend"] = backend
			}
			telemetry.Error("http.panic", fields)
			respond.Error(c, http.StatusInternalServerError, "internal_error", "An unexpected server error occurred.", nil)
		}()
		c.Next()
	}
}
