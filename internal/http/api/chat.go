package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lucaf1-15/lucai-backend/internal/chat"
	"github.com/lucaf1-15/lucai-backend/internal/llm"
	"github.com/lucaf1-15/lucai-backend/internal/models"
	"github.com/lucaf1-15/lucai-backend/internal/quota"
	"github.com/lucaf1-15/lucai-backend/internal/usage"
	log "github.com/sirupsen/logrus"
)

// ChatHandler proxies chat completions and serves chat history.
type ChatHandler struct {
	chats     *chat.Service
	completer llm.Completer
	usage     *usage.Counter
	quota     *quota.Tracker
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(chats *chat.Service, completer llm.Completer, usageCounter *usage.Counter, tracker *quota.Tracker) *ChatHandler {
	return &ChatHandler{chats: chats, completer: completer, usage: usageCounter, quota: tracker}
}

// chatRequest defines the body for the chat proxy endpoint.
type chatRequest struct {
	Messages []models.Message `json:"messages"`
	Model    string           `json:"model"`
}

// Chat forwards the conversation upstream, persists the exchange and
// returns the assistant reply.
func (h *ChatHandler) Chat(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "message": "user not authenticated"})
		return
	}

	var body chatRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || len(body.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "message": "messages array is required and cannot be empty"})
		return
	}

	completion, errComplete := h.completer.Complete(c.Request.Context(), body.Model, body.Messages)
	if errComplete != nil {
		switch {
		case errors.Is(errComplete, llm.ErrUnauthorized):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "api configuration error", "message": "invalid upstream api key, check server configuration"})
		case errors.Is(errComplete, llm.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "api rate limit", "message": "upstream rate limit exceeded, try again later"})
		default:
			log.WithError(errComplete).Error("chat completion failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "chat error", "message": "failed to get ai response"})
		}
		return
	}

	if _, errSave := h.chats.Create(user.ID, append(body.Messages, completion.Message)); errSave != nil {
		log.WithError(errSave).Warn("failed to persist chat history")
	}
	// Completed exchanges feed the usage counter; the daily quota already
	// counted the attempt before the upstream call, so the two can diverge.
	if _, errCount := h.usage.Increment(user.ID); errCount != nil {
		log.WithError(errCount).Warn("failed to record usage")
	}

	c.JSON(http.StatusOK, gin.H{
		"message": completion.Message,
		"usage":   completion.Usage,
	})
}

// History returns the authenticated user's stored chats.
func (h *ChatHandler) History(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "message": "user not authenticated"})
		return
	}
	chats := h.chats.ByUser(user.ID)
	if chats == nil {
		chats = []models.Chat{}
	}
	c.JSON(http.StatusOK, gin.H{
		"chats": chats,
		"count": len(chats),
	})
}

// Status reports the user's remaining daily quota.
func (h *ChatHandler) Status(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "message": "user not authenticated"})
		return
	}

	if user.IsAdmin() {
		c.JSON(http.StatusOK, gin.H{
			"user":         user.Email,
			"role":         user.Role,
			"requestsUsed": h.quota.EffectiveCount(user.ID),
			"dailyLimit":   "unlimited",
			"remaining":    "unlimited",
		})
		return
	}

	used := h.quota.EffectiveCount(user.ID)
	remaining := h.quota.Limit() - used
	if remaining < 0 {
		remaining = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"user":         user.Email,
		"role":         user.Role,
		"requestsUsed": used,
		"dailyLimit":   h.quota.Limit(),
		"remaining":    remaining,
	})
}
