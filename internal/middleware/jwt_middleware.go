package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/islandpros/directory_api/internal/utils"
)

// JWTMiddleware guards the admin routes with HS256 bearer tokens.
type JWTMiddleware struct {
	secret      string
	rateLimiter *InvalidAuthRateLimiter
}

// NewJWTMiddleware constructs a JWTMiddleware. Five failed attempts per
// minute from one IP are allowed before it answers 429.
func NewJWTMiddleware(secret string) *JWTMiddleware {
	return &JWTMiddleware{
		secret:      secret,
		rateLimiter: NewInvalidAuthRateLimiter(5, time.Minute),
	}
}

// Close stops the rate limiter's background cleanup.
func (m *JWTMiddleware) Close() {
	m.rateLimiter.Stop()
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.reject(c, "UNAUTHORIZED", "Missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.reject(c, "UNAUTHORIZED", "Invalid authorization header")
			return
		}

		claims, err := utils.ValidateJWT(m.secret, parts[1])
		if err != nil {
			log.Warn().Err(err).Str("ip", c.ClientIP()).Msg("Rejected admin token")
			m.reject(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set("admin_email", claims.Email)
		c.Next()
	}
}

func (m *JWTMiddleware) reject(c *gin.Context, code, message string) {
	if !m.rateLimiter.Allow(c.ClientIP()) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		c.Abort()
		return
	}
	utils.Error(c, 401, code, message)
	c.Abort()
}

// AdminEmail returns the authenticated admin's email from context.
func AdminEmail(c *gin.Context) string {
	return c.GetString("admin_email")
}
