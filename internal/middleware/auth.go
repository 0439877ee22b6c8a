// Package middleware provides gin middleware for the video library API.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skillsprint/video-library-go/internal/models"
	"github.com/skillsprint/video-library-go/pkg/logger"
)

const (
	headerAPIKey = "X-API-Key"
	headerAuth   = "Authorization"
	bearerPrefix = "Bearer "
)

// APIKeyAuth provides API key authentication middleware.
// If no keys are configured, all requests are rejected.
type APIKeyAuth struct {
	apiKeys []string
}

// NewAPIKeyAuth creates a new API key authentication middleware.
func NewAPIKeyAuth(apiKeys []string) *APIKeyAuth {
	valid := make([]string, 0, len(apiKeys))
	for _, key := range apiKeys {
		if key != "" {
			valid = append(valid, key)
		}
	}

	return &APIKeyAuth{apiKeys: valid}
}

// Handler returns a gin middleware that validates API keys. Keys are
// accepted from the X-API-Key header or an Authorization: Bearer header.
func (a *APIKeyAuth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := a.extractAPIKey(c)

		if !a.isValidAPIKey(apiKey) {
			logger.Log.Warn("unauthorized request - invalid or missing API key",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.String("remoteAddr", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:    http.StatusUnauthorized,
				Error:     "Unauthorized",
				Message:   "a valid API key is required",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
			return
		}

		c.Next()
	}
}

// extractAPIKey extracts the API key from the request headers.
// It checks X-API-Key first, then Authorization: Bearer.
func (a *APIKeyAuth) extractAPIKey(c *gin.Context) string {
	if apiKey := c.GetHeader(headerAPIKey); apiKey != "" {
		return apiKey
	}

	authHeader := c.GetHeader(headerAuth)
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimPrefix(authHeader, bearerPrefix)
	}

	return ""
}

// isValidAPIKey validates the provided API key using constant-time
// comparison to prevent timing attacks.
func (a *APIKeyAuth) isValidAPIKey(providedKey string) bool {
	if providedKey == "" {
		return false
	}

	for _, validKey := range a.apiKeys {
		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(validKey)) == 1 {
			return true
		}
	}

	return false
}

// NoStore marks responses as uncacheable. Video state changes on every
// call, and a cached response would show stale quota and lists.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// RequestLogger logs completed requests with timing.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Log.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("durationMs", time.Since(start).Milliseconds()),
			zap.String("remoteAddr", c.ClientIP()),
		)
	}
}
