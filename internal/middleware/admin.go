package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mingshu/tutor-api/internal/service"
	appErrors "github.com/mingshu/tutor-api/pkg/errors"
	"github.com/mingshu/tutor-api/pkg/response"
)

// SessionCookieName is the fallback cookie carrying the admin session.
const SessionCookieName = "admin_token"

// AdminOnly protects routes behind the single admin credential. It
// accepts a Bearer session token, the raw pre-shared token, or the
// session cookie set by browser clients.
func AdminOnly(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				token = cookie
			}
		}
		if token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing credentials"))
			c.Abort()
			return
		}

		if err := authService.ValidateSession(token); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
