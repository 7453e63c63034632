package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ewm/api/middleware"
	"ewm/api/models"
	"ewm/api/utils"
)

// AuthHandlers exchanges the configured admin credentials for a JWT.
type AuthHandlers struct {
	email        string
	passwordHash []byte
	secret       []byte
	log          *zap.Logger
}

func NewAuthHandlers(email, passwordHash string, secret []byte, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		secret:       secret,
		log:          log,
	}
}

func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if h.email == "" || len(h.passwordHash) == 0 {
		h.log.Warn("admin login attempted but no admin credentials are configured")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(email), []byte(h.email)) != 1 {
		h.log.Info("admin login failed: unknown email", zap.String("email", email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		h.log.Info("admin login failed: password mismatch", zap.String("email", email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := utils.GenerateJWT(h.secret, email)
	if err != nil {
		h.log.Error("failed to generate admin JWT", zap.String("email", email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetCookie(
		middleware.AuthCookie,
		tokenString,
		int(time.Hour/time.Second),
		"/",
		"",
		false,
		true,
	)

	h.log.Info("admin logged in", zap.String("email", email))
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   tokenString,
	})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	// MaxAge -1 expires the cookie immediately.
	c.SetCookie(
		middleware.AuthCookie,
		"",
		-1,
		"/",
		"",
		false,
		true,
	)

	h.log.Info("admin logged out")
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
