package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/vouch/internal/auth/domain"
	authHTTP "github.com/allisson/vouch/internal/auth/http"
)

// createTestContext creates a test Gin context with the given request.
// A non-empty userID is stored as the authenticated identity.
func createTestContext(
	method, path, userID string,
	body interface{},
) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		identity := &authDomain.Identity{UserID: userID, Role: authDomain.RoleUser}
		req = req.WithContext(authHTTP.WithIdentity(req.Context(), identity))
	}
	c.Request = req

	return c, w
}
