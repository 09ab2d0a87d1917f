// Package api wires the HTTP surface: auth, chat proxy and admin routes.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucaf1-15/lucai-backend/internal/account"
	"github.com/lucaf1-15/lucai-backend/internal/chat"
	"github.com/lucaf1-15/lucai-backend/internal/config"
	"github.com/lucaf1-15/lucai-backend/internal/llm"
	"github.com/lucaf1-15/lucai-backend/internal/quota"
	"github.com/lucaf1-15/lucai-backend/internal/ratelimit"
	"github.com/lucaf1-15/lucai-backend/internal/usage"
)

// Deps bundles the services the HTTP layer depends on.
type Deps struct {
	Accounts  *account.Service
	Chats     *chat.Service
	Quota     *quota.Tracker
	Usage     *usage.Counter
	Completer llm.Completer
	Limiter   *ratelimit.Manager

	JWT        config.JWTConfig
	BurstLimit int
	NowFn      func() time.Time
}

// RegisterRoutes registers all routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	if deps.NowFn == nil {
		deps.NowFn = time.Now
	}

	healthHandler := NewHealthHandler()
	r.GET("/health", healthHandler.Health)

	authHandler := NewAuthHandler(deps.Accounts, deps.JWT, deps.NowFn)
	authGroup := r.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/verify", authMiddleware(deps.Accounts, deps.JWT), authHandler.Verify)

	chatHandler := NewChatHandler(deps.Chats, deps.Completer, deps.Usage, deps.Quota)
	apiGroup := r.Group("/api")
	apiGroup.Use(authMiddleware(deps.Accounts, deps.JWT))
	apiGroup.POST("/chat", burstLimitMiddleware(deps.Limiter, deps.BurstLimit), quotaMiddleware(deps.Quota), chatHandler.Chat)
	apiGroup.GET("/chat/history", chatHandler.History)
	apiGroup.GET("/chat/status", chatHandler.Status)

	adminHandler := NewAdminHandler(deps.Accounts, deps.Chats, deps.Usage, deps.NowFn)
	adminGroup := r.Group("/admin")
	adminGroup.Use(authMiddleware(deps.Accounts, deps.JWT))
	adminGroup.Use(requireAdmin())
	adminGroup.GET("/users", adminHandler.Users)
	adminGroup.GET("/stats", adminHandler.Stats)
	adminGroup.GET("/usage", adminHandler.Usage)
	adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
}
