package middleware

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/sharda-hr/performance-service/internal/config"
	"github.com/sharda-hr/performance-service/internal/models"
	"github.com/sharda-hr/performance-service/internal/utils"
)

// InitCasdoor configures the global Casdoor SDK client.
func InitCasdoor(cfg config.CasdoorConfig) {
	casdoorsdk.InitConfig(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
}

// Auth validates the Bearer token via Casdoor and puts the employee identity
// into the request context. The Casdoor user tag carries the HR role.
func Auth(logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header is required",
			})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header must use the Bearer scheme",
			})
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			logger.Warn("Token validation failed", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			return
		}

		role := models.HRRole(claims.User.Tag)
		if role == "" {
			role = models.RoleEmployee
		}

		c.Set("user_id", claims.User.Id)
		c.Set("user_name", claims.User.Name)
		c.Set("role", role)
		c.Next()
	}
}
