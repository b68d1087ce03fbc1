package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agile-pricing/internal/api/models"
)

// Recovery converts panics into the API's error envelope instead of a bare
// 500, so the page can always render "unavailable".
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: msg,
			},
		})
		c.Abort()
	})
}
