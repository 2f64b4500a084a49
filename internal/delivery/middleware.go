package delivery

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	APIKeyHeader    = "apikey"
	RequestIDHeader = "X-Request-ID"

	sessionKey = "session"
)

// RequireAPIKey rejects requests whose apikey header does not match key.
func RequireAPIKey(key string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(APIKeyHeader)
		if got == "" {
			log.Warn("Middleware: apikey header is missing")
			abortWithError(c, http.StatusUnauthorized, "API key required")
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			log.Warn("Middleware: Invalid apikey header")
			abortWithError(c, http.StatusUnauthorized, "Invalid API key")
			return
		}
		c.Next()
	}
}

// RequireSession resolves the bearer token to a live session and stores it
// on the context.
func RequireSession(auth usecase.AuthUseCase, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Middleware: Authorization header is missing")
			abortWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			log.Warn("Middleware: Invalid Authorization header format")
			abortWithError(c, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		info, err := auth.GetSession(c.Request.Context(), parts[1])
		if err != nil {
			statusCode := mapErrorToStatus(err)
			if statusCode >= http.StatusInternalServerError {
				log.Errorf("Middleware: Failed to resolve session: %v", err)
				abortWithError(c, statusCode, "Failed to resolve session")
				return
			}
			log.Warnf("Middleware: Rejected token: %v", err)
			abortWithError(c, statusCode, "Invalid session: "+err.Error())
			return
		}

		c.Set(sessionKey, info)
		c.Next()
	}
}

// RequireAdmin must run after RequireSession.
func RequireAdmin(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := currentSession(c)
		if info == nil || !info.Profile.IsAdmin {
			if info != nil {
				log.Warnf("Middleware: User %s denied admin access to %s", info.Profile.ID, c.Request.URL.Path)
			}
			abortWithError(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *domain.SessionInfo {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	info, _ := v.(*domain.SessionInfo)
	return info
}

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"status_code": statusCode,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"latency_ms":  time.Since(startTime).Milliseconds(),
		})
		if reqID := c.Writer.Header().Get(RequestIDHeader); reqID != "" {
			entry = entry.WithField("request_id", reqID)
		}
		if info := currentSession(c); info != nil {
			entry = entry.WithField("user_id", info.Profile.ID)
		}

		switch {
		case len(c.Errors) > 0:
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case statusCode >= 500:
			entry.Error("Request completed with server error")
		case statusCode >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}
