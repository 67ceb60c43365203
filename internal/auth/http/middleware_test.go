package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/vouch/internal/auth/domain"
	"github.com/allisson/vouch/internal/auth/http/mocks"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthRouter(parser *mocks.MockIdentityParser, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := newTestLogger()

	router := gin.New()
	router.Use(AuthenticationMiddleware(parser, logger))
	for _, h := range extra {
		router.Use(h)
	}
	router.GET("/test", func(c *gin.Context) {
		identity, ok := GetIdentity(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "role": identity.Role})
	})
	return router
}

func performRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticationMiddleware(t *testing.T) {
	t.Run("Success_StoresIdentity", func(t *testing.T) {
		parser := &mocks.MockIdentityParser{}
		parser.On("Parse", "good-token").
			Return(&authDomain.Identity{UserID: "user-1", Role: authDomain.RoleUser}, nil).
			Once()

		w := performRequest(newAuthRouter(parser), "Bearer good-token")

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "user-1", body["user_id"])
		assert.Equal(t, authDomain.RoleUser, body["role"])
		parser.AssertExpectations(t)
	})

	t.Run("Success_CaseInsensitivePrefix", func(t *testing.T) {
		parser := &mocks.MockIdentityParser{}
		parser.On("Parse", "good-token").
			Return(&authDomain.Identity{UserID: "user-1", Role: authDomain.RoleUser}, nil).
			Once()

		w := performRequest(newAuthRouter(parser), "bEaReR good-token")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_MissingHeader", func(t *testing.T) {
		parser := &mocks.MockIdentityParser{}

		w := performRequest(newAuthRouter(parser), "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		parser.AssertNotCalled(t, "Parse")
	})

	t.Run("Error_MalformedHeader", func(t *testing.T) {
		parser := &mocks.MockIdentityParser{}

		w := performRequest(newAuthRouter(parser), "Basic dXNlcjpwYXNz")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		parser.AssertNotCalled(t, "Parse")
	})

	t.Run("Error_TokenRejected", func(t *testing.T) {
		parser := &mocks.MockIdentityParser{}
		parser.On("Parse", "bad-token").Return(nil, authDomain.ErrInvalidToken).Once()

		w := performRequest(newAuthRouter(parser), "Bearer bad-token")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		parser.AssertExpectations(t)
	})
}

func TestRequireRole(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success_AdminAllowed", func(t *testing.T) {
		parser := &mocks.MockIdentityParser{}
		parser.On("Parse", "admin-token").
			Return(&authDomain.Identity{UserID: "admin-1", Role: authDomain.RoleAdmin}, nil)

		w := performRequest(
			newAuthRouter(parser, RequireRole(authDomain.RoleAdmin, logger)),
			"Bearer admin-token",
		)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_UserForbidden", func(t *testing.T) {
		parser := &mocks.MockIdentityParser{}
		parser.On("Parse", "user-token").
			Return(&authDomain.Identity{UserID: "user-1", Role: authDomain.RoleUser}, nil)

		w := performRequest(
			newAuthRouter(parser, RequireRole(authDomain.RoleAdmin, logger)),
			"Bearer user-token",
		)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_NoIdentity", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(RequireRole(authDomain.RoleAdmin, logger))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := performRequest(router, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
