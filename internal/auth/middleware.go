package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/examstack/exam-service/internal/config"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// Authenticator verifies Casdoor JWTs and mirrors the identity into the
// local users table so exam sessions can reference it.
type Authenticator struct {
	client *casdoorsdk.Client
	users  repositories.UserRepository
	logger utils.Logger
}

func NewAuthenticator(cfg config.CasdoorConfig, users repositories.UserRepository, logger utils.Logger) *Authenticator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &Authenticator{
		client: client,
		users:  users,
		logger: logger,
	}
}

// Middleware validates the bearer token and stores user_id and is_admin
// in the request context.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Missing authorization token",
			})
			return
		}

		claims, err := a.client.ParseJwtToken(token)
		if err != nil {
			a.logger.Warn("Token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization token",
			})
			return
		}

		userID := claims.User.Id
		if userID == "" {
			userID = claims.User.Name
		}

		now := time.Now()
		user := &models.User{
			ID:          userID,
			Name:        claims.User.DisplayName,
			Email:       claims.User.Email,
			IsAdmin:     claims.User.IsAdmin,
			IsActive:    true,
			LastLoginAt: &now,
		}
		if user.Name == "" {
			user.Name = claims.User.Name
		}
		if err := a.users.Upsert(c.Request.Context(), user); err != nil {
			// token is valid; a mirror failure should not block the request
			a.logger.LogError(err, "Failed to upsert user", "user_id", userID)
		}

		c.Set("user_id", userID)
		c.Set("is_admin", claims.User.IsAdmin)
		c.Next()
	}
}

// AdminMiddleware rejects requests from non-admin users. Must run after
// Middleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get("is_admin")
		if !exists || isAdmin != true {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
