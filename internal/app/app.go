// Package app wires stores, services and the HTTP server together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lucaf1-15/lucai-backend/internal/account"
	"github.com/lucaf1-15/lucai-backend/internal/chat"
	"github.com/lucaf1-15/lucai-backend/internal/config"
	"github.com/lucaf1-15/lucai-backend/internal/http/api"
	"github.com/lucaf1-15/lucai-backend/internal/llm"
	"github.com/lucaf1-15/lucai-backend/internal/models"
	"github.com/lucaf1-15/lucai-backend/internal/quota"
	"github.com/lucaf1-15/lucai-backend/internal/ratelimit"
	"github.com/lucaf1-15/lucai-backend/internal/store"
	"github.com/lucaf1-15/lucai-backend/internal/usage"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Backing file names inside the data directory.
const (
	usersFile = "users.json"
	chatsFile = "chats.json"
	usageFile = "usage.json"
)

// RunServer boots the HTTP server with file-backed stores and blocks until
// the context is cancelled.
func RunServer(ctx context.Context, cfg config.Config) error {
	users, errUsers := store.NewCollection(filepath.Join(cfg.DataDir, usersFile), func(u models.User) string { return u.ID })
	if errUsers != nil {
		return errUsers
	}
	chats, errChats := store.NewCollection(filepath.Join(cfg.DataDir, chatsFile), func(c models.Chat) string { return c.ID })
	if errChats != nil {
		return errChats
	}
	usageKV, errUsage := store.NewKV(filepath.Join(cfg.DataDir, usageFile))
	if errUsage != nil {
		return errUsage
	}

	accounts := account.NewService(users, nil)
	chatService := chat.NewService(chats, nil)
	tracker := quota.NewTracker(users, cfg.DailyLimit, nil)
	counter := usage.NewCounter(usageKV, nil)
	completer := llm.NewGroqClient(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.Model)

	limiter := ratelimit.NewManager(func() ratelimit.Settings {
		return ratelimit.Settings{
			Limit:         cfg.Burst.Limit,
			RedisEnabled:  cfg.Burst.RedisAddr != "",
			RedisAddr:     cfg.Burst.RedisAddr,
			RedisPassword: cfg.Burst.RedisPassword,
			RedisDB:       cfg.Burst.RedisDB,
			RedisPrefix:   cfg.Burst.RedisPrefix,
		}
	}, nil, nil)

	engine := buildEngine(cfg)
	api.RegisterRoutes(engine, api.Deps{
		Accounts:   accounts,
		Chats:      chatService,
		Quota:      tracker,
		Usage:      counter,
		Completer:  completer,
		Limiter:    limiter,
		JWT:        cfg.JWT,
		BurstLimit: cfg.Burst.Limit,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"port":     cfg.Port,
			"data_dir": cfg.DataDir,
			"frontend": cfg.FrontendURL,
		}).Info("server starting")
		if errServe := srv.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
	}()

	select {
	case errServe := <-errCh:
		return errServe
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildEngine constructs the gin engine with logging and CORS middleware.
func buildEngine(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{cfg.FrontendURL}
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsCfg))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not found",
			"message": fmt.Sprintf("route %s %s not found", c.Request.Method, c.Request.URL.Path),
		})
	})
	return engine
}

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("request")
	}
}
