package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware tags every request with an ID, echoes it in the
// X-Request-ID header and attaches it to a request-scoped logger so handler
// logs can be correlated with the response metadata.
func RequestIDMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)

		reqLog := log.With().Str("request_id", reqID).Logger()
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))
		c.Next()
	}
}
