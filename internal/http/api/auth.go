package api

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucaf1-15/lucai-backend/internal/account"
	"github.com/lucaf1-15/lucai-backend/internal/config"
	"github.com/lucaf1-15/lucai-backend/internal/security"
	log "github.com/sirupsen/logrus"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// AuthHandler manages signup, login and token verification.
type AuthHandler struct {
	accounts *account.Service
	jwtCfg   config.JWTConfig
	nowFn    func() time.Time
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(accounts *account.Service, jwtCfg config.JWTConfig, nowFn func() time.Time) *AuthHandler {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &AuthHandler{accounts: accounts, jwtCfg: jwtCfg, nowFn: nowFn}
}

// credentialsRequest defines the body for signup and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new user and returns a session token.
func (h *AuthHandler) Signup(c *gin.Context) {
	var body credentialsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "message": "email and password are required"})
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "message": "email and password are required"})
		return
	}
	if !emailPattern.MatchString(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "message": "invalid email format"})
		return
	}
	if len(body.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "message": "password must be at least 6 characters"})
		return
	}

	user, errSignup := h.accounts.Signup(email, body.Password)
	if errSignup != nil {
		if errors.Is(errSignup, account.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "user exists", "message": "an account with this email already exists"})
			return
		}
		log.WithError(errSignup).Error("signup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error", "message": "failed to create user"})
		return
	}

	token, errToken := security.IssueToken(h.jwtCfg.Secret, user.ID, user.Email, h.jwtCfg.Expiry, h.nowFn())
	if errToken != nil {
		log.WithError(errToken).Error("issue token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error", "message": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "user created successfully",
		"token":   token,
		"user":    user.Public(),
	})
}

// Login authenticates a user and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body credentialsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "message": "email and password are required"})
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "message": "email and password are required"})
		return
	}

	user, errAuth := h.accounts.Authenticate(email, body.Password)
	if errAuth != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed", "message": "invalid email or password"})
		return
	}

	token, errToken := security.IssueToken(h.jwtCfg.Secret, user.ID, user.Email, h.jwtCfg.Expiry, h.nowFn())
	if errToken != nil {
		log.WithError(errToken).Error("issue token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error", "message": "failed to login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"token":   token,
		"user":    user.Public(),
	})
}

// Verify confirms the bearer token and returns the current user.
func (h *AuthHandler) Verify(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "message": "user not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "token is valid",
		"user":    user.Public(),
	})
}
