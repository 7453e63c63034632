package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewm/api/utils"
)

// AuthCookie is the cookie that carries the admin JWT.
const AuthCookie = "jwt_token"

// AuthRequired admits requests carrying the default API key in X-API-KEY or
// a valid admin JWT in the cookie or Authorization header.
func AuthRequired(secret []byte, authDefault string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authDefault != "" && c.GetHeader("X-API-KEY") == authDefault {
			c.Next()
			return
		}

		tokenString, err := c.Cookie(AuthCookie)
		if err != nil || tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
			if tokenString == "" {
				log.Info("no admin token in cookie or header", zap.String("path", c.Request.URL.Path))
				unauthorized(c, "No token provided")
				return
			}
		}

		claims, err := utils.ValidateJWT(secret, tokenString)
		if err != nil {
			log.Info("invalid admin token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set("admin_email", claims.Email)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "UNAUTHORIZED",
		"reason":  "Authentication required",
		"message": msg,
	})
}
