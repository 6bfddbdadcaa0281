package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"admissions/internal/pkg/response"
)

// ErrorLogger logs failed requests and recovers from panics.
func ErrorLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				logRequestError(logger, c, start, "panic", fmt.Sprintf("%v", recovered),
					zap.ByteString("stack", debug.Stack()))
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error")
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					logRequestError(logger, c, start, "http_error", fmt.Sprintf("status=%d", c.Writer.Status()))
				}
				return
			}

			for _, err := range c.Errors {
				fields := []zap.Field{}
				if err.Meta != nil {
					fields = append(fields, zap.Any("meta", err.Meta))
				}
				logRequestError(logger, c, start, fmt.Sprintf("%v", err.Type), err.Error(), fields...)
			}
		}()

		c.Next()
	}
}

func logRequestError(logger *zap.Logger, c *gin.Context, start time.Time, errType, message string, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("type", errType),
		zap.Int("status", c.Writer.Status()),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.String("client_ip", c.ClientIP()),
		zap.String("user_id", c.GetString("user_id")),
		zap.String("request_id", requestID(c)),
		zap.Duration("latency", time.Since(start)),
	}, extra...)
	logger.Error("request_error: "+message, fields...)
}

const requestIDHeader = "X-Request-ID"

func requestID(c *gin.Context) string {
	return c.GetHeader(requestIDHeader)
}
