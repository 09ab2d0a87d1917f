package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucaf1-15/lucai-backend/internal/account"
	"github.com/lucaf1-15/lucai-backend/internal/chat"
	"github.com/lucaf1-15/lucai-backend/internal/models"
	"github.com/lucaf1-15/lucai-backend/internal/usage"
	log "github.com/sirupsen/logrus"
)

// AdminHandler serves admin-only endpoints.
type AdminHandler struct {
	accounts *account.Service
	chats    *chat.Service
	usage    *usage.Counter
	nowFn    func() time.Time
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(accounts *account.Service, chats *chat.Service, usageCounter *usage.Counter, nowFn func() time.Time) *AdminHandler {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &AdminHandler{accounts: accounts, chats: chats, usage: usageCounter, nowFn: nowFn}
}

// Users returns all user accounts without password hashes.
func (h *AdminHandler) Users(c *gin.Context) {
	users := h.accounts.All()
	out := make([]models.Public, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, gin.H{
		"users": out,
		"count": len(out),
	})
}

// Stats returns platform-wide statistics.
func (h *AdminHandler) Stats(c *gin.Context) {
	users := h.accounts.All()
	now := h.nowFn().UTC()
	today := now.Format("2006-01-02")

	var standard, admins, activeToday int
	for _, u := range users {
		switch u.Role {
		case models.RoleAdmin:
			admins++
		default:
			standard++
		}
		if u.LastRequestDate != nil && u.LastRequestDate.UTC().Format("2006-01-02") == today {
			activeToday++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalUsers":       len(users),
		"standardUsers":    standard,
		"adminUsers":       admins,
		"totalChats":       len(h.chats.All()),
		"activeUsersToday": activeToday,
	})
}

// Usage returns the full usage counter mapping.
func (h *AdminHandler) Usage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"usage": h.usage.AllStats(),
	})
}

// DeleteUser removes a user account. Admins cannot delete themselves.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	self, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "message": "user not authenticated"})
		return
	}
	userID := c.Param("id")
	if userID == self.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid operation", "message": "cannot delete your own account"})
		return
	}

	if errDelete := h.accounts.Delete(userID); errDelete != nil {
		if errors.Is(errDelete, account.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found", "message": "user not found"})
			return
		}
		log.WithError(errDelete).Error("delete user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error", "message": "failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "user deleted successfully",
		"userId":  userID,
	})
}
