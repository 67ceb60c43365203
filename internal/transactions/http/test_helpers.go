package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/vouch/internal/auth/domain"
	authHTTP "github.com/allisson/vouch/internal/auth/http"
)

// createTestContext creates a test Gin context with a JSON body.
// A non-empty userID is stored as the authenticated identity.
func createTestContext(
	method, path, userID string,
	body interface{},
) (*gin.Context, *httptest.ResponseRecorder) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}
	return newContext(method, path, userID, bodyReader, "application/json")
}

// createMultipartContext creates a test Gin context with a multipart form body.
// video is attached as the "video" part unless it is nil.
func createMultipartContext(
	path, userID string,
	fields map[string]string,
	video []byte,
	videoContentType string,
) (*gin.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		_ = writer.WriteField(name, value)
	}
	if video != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="video"; filename="statement.mp4"`)
		header.Set("Content-Type", videoContentType)
		part, _ := writer.CreatePart(header)
		_, _ = part.Write(video)
	}
	_ = writer.Close()

	return newContext("POST", path, userID, &buf, writer.FormDataContentType())
}

func newContext(
	method, path, userID string,
	body io.Reader,
	contentType string,
) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	if userID != "" {
		identity := &authDomain.Identity{UserID: userID, Role: authDomain.RoleUser}
		req = req.WithContext(authHTTP.WithIdentity(req.Context(), identity))
	}
	c.Request = req

	return c, w
}
