package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/memolite-backend/pkg/logger"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// LoggingMiddleware logs HTTP requests with structured logging
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start timer
		startTime := time.Now()

		// 프록시가 넘긴 X-Request-ID 우선 사용
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = generateRequestID()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		// Create logger with request context
		log := logger.WithContext(map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
		})

		// 헬스체크/메트릭 수집은 debug로만 남긴다
		quiet := isProbePath(c.Request.URL.Path)
		incoming := map[string]interface{}{
			"user_agent": c.Request.UserAgent(),
			"query":      c.Request.URL.RawQuery,
		}
		if quiet {
			log.Debug("Incoming request", incoming)
		} else {
			log.Info("Incoming request", incoming)
		}

		// Store logger in context for use in handlers
		c.Set("logger", log)

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		// Determine log level based on status code
		fields := map[string]interface{}{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"latency":     latency.String(),
			"body_size":   c.Writer.Size(),
		}

		if route := c.FullPath(); route != "" {
			fields["route"] = route
		}
		// 인증 미들웨어가 설정한 사용자
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}

		// Add error if exists
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		// Log based on status code
		msg := "Request completed"
		if statusCode >= 500 {
			log.Error(msg, nil, fields)
		} else if statusCode >= 400 {
			log.Warn(msg, fields)
		} else if quiet {
			log.Debug(msg, fields)
		} else {
			log.Info(msg, fields)
		}
	}
}

const RequestIDHeader = "X-Request-ID"

func isProbePath(path string) bool {
	return path == "/health" || path == "/metrics"
}

func generateRequestID() string {
	id, err := gonanoid.New()
	if err != nil {
		return time.Now().Format("20060102150405.000000")
	}
	return id
}

// GetLoggerFromContext retrieves the logger from gin context
func GetLoggerFromContext(c *gin.Context) *logger.Logger {
	if log, exists := c.Get("logger"); exists {
		if l, ok := log.(*logger.Logger); ok {
			return l
		}
	}
	// Return global logger as fallback
	return logger.Get()
}
