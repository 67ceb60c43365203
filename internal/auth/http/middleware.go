package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/vouch/internal/auth/domain"
	authService "github.com/allisson/vouch/internal/auth/service"
	apperrors "github.com/allisson/vouch/internal/errors"
	"github.com/allisson/vouch/internal/httputil"
)

// AuthenticationMiddleware resolves the caller identity from the Bearer token in the
// Authorization header and stores it in the request context.
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer")
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Token rejected by the parser → 401 Unauthorized
func AuthenticationMiddleware(parser authService.IdentityParser, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		rawToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		identity, err := parser.Parse(rawToken)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("user_id", identity.UserID),
			slog.String("role", identity.Role))

		c.Next()
	}
}

// RequireRole rejects authenticated identities lacking role with 403 Forbidden.
// MUST be used after AuthenticationMiddleware.
func RequireRole(role string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !identity.HasRole(role) {
			logger.Debug("authorization failed: insufficient role",
				slog.String("user_id", identity.UserID),
				slog.String("required_role", role))
			httputil.HandleErrorGin(c, authDomain.ErrRoleRequired, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
