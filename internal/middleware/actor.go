package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog-service/internal/models"
)

// ActorMiddleware extracts the acting user from the X-User-ID header set
// by the auth gateway in front of this service. Admin routes fail closed
// when no actor is present; session handling itself lives upstream.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "ACTOR_REQUIRED",
					Message: "User ID is required. Include the X-User-ID header.",
				},
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// GetUserID retrieves the acting user id from gin context
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
