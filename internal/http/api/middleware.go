package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lucaf1-15/lucai-backend/internal/account"
	"github.com/lucaf1-15/lucai-backend/internal/config"
	"github.com/lucaf1-15/lucai-backend/internal/models"
	"github.com/lucaf1-15/lucai-backend/internal/quota"
	"github.com/lucaf1-15/lucai-backend/internal/ratelimit"
	"github.com/lucaf1-15/lucai-backend/internal/security"
	log "github.com/sirupsen/logrus"
)

const userContextKey = "user"

// currentUser returns the authenticated user stored by authMiddleware.
func currentUser(c *gin.Context) (models.User, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// authMiddleware validates bearer tokens and loads the user into the
// request context. The user is re-read from the store on every request so a
// deleted account is rejected even with a valid token.
func authMiddleware(accounts *account.Service, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "message": "no token provided"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "message": "no token provided"})
			return
		}

		claims, errParse := security.ParseToken(jwtCfg.Secret, strings.TrimSpace(token))
		if errParse != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "message": "token is invalid or expired"})
			return
		}

		user, errFind := accounts.ByID(claims.UserID)
		if errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found", "message": "user associated with token does not exist"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// requireAdmin rejects authenticated users without the admin role.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "message": "user not authenticated"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "admin access required"})
			return
		}
		c.Next()
	}
}

// burstLimitMiddleware applies the per-second burst limit when configured.
func burstLimitMiddleware(limiter *ratelimit.Manager, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}
		user, ok := currentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "message": "user not authenticated"})
			return
		}
		result, errAllow := limiter.Allow(c.Request.Context(), ratelimit.UserKey(user.ID), limit)
		if errAllow != nil {
			log.WithError(errAllow).Warn("burst limit check failed, allowing request")
			c.Next()
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate limit exceeded",
				"message": "too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}

// quotaMiddleware enforces the daily request limit: check the effective
// count, reject at the limit, otherwise record the request. Check and
// increment are separate store operations, so two concurrent requests can
// both pass the check; that race is inherent to the file-backed counter.
func quotaMiddleware(tracker *quota.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "message": "user not authenticated"})
			return
		}
		if user.IsAdmin() {
			c.Next()
			return
		}

		if errCheck := tracker.Check(user); errCheck != nil {
			var limitErr *quota.LimitError
			if errors.As(errCheck, &limitErr) {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":   "rate limit exceeded",
					"message": fmt.Sprintf("you have reached your daily limit of %d requests", limitErr.Limit),
					"limit":   limitErr.Limit,
					"current": limitErr.Current,
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rate limiting error", "message": "internal server error"})
			return
		}

		current := tracker.EffectiveCount(user.ID)
		if errRecord := tracker.RecordRequest(user.ID); errRecord != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rate limiting error", "message": "internal server error"})
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", tracker.Limit()))
		remaining := tracker.Limit() - current - 1
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Next()
	}
}
