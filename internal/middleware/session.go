package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/nurseprep-backend/internal/response"
	"github.com/stemsi/nurseprep-backend/internal/service"
)

// CheckSingleDeviceSession validates the JWT's JTI against the active session in Redis.
// A mismatch means the student logged in elsewhere or an admin reset the session.
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Only enforce for student tokens.
		if claims.TokenType != service.TokenTypeStudent {
			c.Next()
			return
		}

		if err := authService.ValidateStudentSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			if !errors.Is(err, service.ErrSessionInvalidated) && !errors.Is(err, service.ErrNoActiveSession) {
				zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Session check failed")
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
