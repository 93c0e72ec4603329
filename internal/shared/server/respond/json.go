package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes payload as a 200 response.
func OK(c *gin.Context, payload any) {
	Status(c, http.StatusOK, payload)
}

// Status writes payload with an explicit status, for bodies that are not
// errors but still report a degraded state, such as health.
func Status(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
