package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/interlinker/internal/logger"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RecoveryMiddleware turns panics into a logged 500.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					logger.Any("error", err),
					logger.String("path", c.Request.URL.Path),
					logger.String("method", c.Request.Method),
					logger.String("client_ip", c.ClientIP()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "internal server error",
					Code:  CodeInternal,
				})
			}
		}()

		c.Next()
	}
}

// RequestIDMiddleware reuses an inbound X-Request-ID or generates one, and
// attaches a request-scoped logger to the request context.
func RequestIDMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		scoped := log.With(logger.String(requestIDKey, requestID))
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), scoped))

		c.Next()
	}
}

// LoggerMiddleware logs one line per request.
func LoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}
		if id, ok := c.Get(requestIDKey); ok {
			if s, isString := id.(string); isString {
				fields = append(fields, logger.String(requestIDKey, s))
			}
		}
		if query != "" {
			fields = append(fields, logger.String("query", query))
		}
		if !strings.HasPrefix(path, "/health") {
			fields = append(fields, logger.String("user_agent", c.Request.UserAgent()))
		}

		if len(c.Errors) > 0 {
			fields = append(fields, logger.Strings("errors", c.Errors.Errors()))
			log.Error("HTTP request with errors", fields...)
			return
		}
		log.Info("HTTP request", fields...)
	}
}

// BodyLimitMiddleware caps request bodies at limit bytes. A limit of zero
// or less disables the cap.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
