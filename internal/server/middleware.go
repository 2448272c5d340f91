package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const contextUIDKey = "uid"

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		uid, err := s.identitySvc.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUIDKey, uid)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(contextUIDKey)
}

// MintRateLimit guards the minting endpoint. Limiter errors fail open.
func (s *Server) MintRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.mintLimiter.Enabled() {
			c.Next()
			return
		}

		allowed, err := s.mintLimiter.Allow(c.Request.Context(), userID(c))
		if err != nil {
			s.log.Warn("mint rate limit check failed", zap.Error(err))
		}
		if !allowed {
			c.Header("Retry-After", "1")
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
