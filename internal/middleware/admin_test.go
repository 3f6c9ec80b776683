package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mingshu/tutor-api/internal/service"
)

func newProtectedRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := service.NewAuthService(nil, nil, service.AuthConfig{
		AdminToken: "top-secret",
		Issuer:     "tutor-api-test",
	})

	r := gin.New()
	r.GET("/protected", AdminOnly(auth), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, auth
}

func TestAdminOnlyMissingCredentials(t *testing.T) {
	r, _ := newProtectedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestAdminOnlyRawToken(t *testing.T) {
	r, _ := newProtectedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer top-secret")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminOnlySessionToken(t *testing.T) {
	r, auth := newProtectedRouter(t)

	session, err := auth.Login(service.LoginRequest{Token: "top-secret"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminOnlyCookieFallback(t *testing.T) {
	r, auth := newProtectedRouter(t)

	session, err := auth.Login(service.LoginRequest{Token: "top-secret"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.AccessToken})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminOnlyRejectsBadToken(t *testing.T) {
	r, _ := newProtectedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-the-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnlyRejectsMalformedHeader(t *testing.T) {
	r, _ := newProtectedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "top-secret")
	r.ServeHTTP(w, req)

	// a bare token without the Bearer scheme is not accepted
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
