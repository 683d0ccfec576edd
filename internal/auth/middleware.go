package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

const (
	msgAuthRequired     = "Authentication required. Please log in."
	msgSessionExpired   = "Your session has expired. Please log in again."
	msgInvalidSession   = "Invalid token. Please log in again."
	msgPermissionDenied = "You do not have permission to perform this action"
	msgAuthUnavailable  = "Unable to verify session"
)

// Middleware authenticates requests and enforces roles.
type Middleware struct {
	signer   TokenSigner
	denylist Denylist
	users    services.UserStore
	cookies  Cookies
	logger   *zap.Logger
}

// NewMiddleware creates the authentication middleware. denylist may be nil.
func NewMiddleware(signer TokenSigner, denylist Denylist, users services.UserStore, cookies Cookies, logger *zap.Logger) *Middleware {
	return &Middleware{
		signer:   signer,
		denylist: denylist,
		users:    users,
		cookies:  cookies,
		logger:   logger,
	}
}

// Authenticate requires a valid token and attaches its Identity to the
// request context. Every rejection clears the token cookie.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c.Request)
		if token == "" {
			m.unauthorized(c, msgAuthRequired, false)
			return
		}

		claims, err := m.signer.Verify(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				m.unauthorized(c, msgSessionExpired, true)
				return
			}
			m.unauthorized(c, msgInvalidSession, false)
			return
		}

		if m.denylist != nil {
			revoked, err := m.denylist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				m.logger.Error("token revocation check failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": msgAuthUnavailable,
				})
				return
			}
			if revoked {
				m.unauthorized(c, msgInvalidSession, false)
				return
			}
		}

		identity := Identity{
			UserID:    claims.Subject,
			TokenID:   claims.ID,
			ExpiresAt: claims.ExpiresAt.Time,
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RequireRole loads the authenticated user and allows the request only when
// the stored role is one of roles. It must run after Authenticate.
func (m *Middleware) RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	allowed := make(map[entities.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		identity, ok := IdentityFrom(ctx)
		if !ok {
			m.unauthorized(c, msgAuthRequired, false)
			return
		}

		user, err := m.users.GetUserByID(ctx, identity.UserID)
		if err != nil {
			if errors.Is(err, services.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": services.ErrUserNotFound.Message,
				})
				return
			}
			m.logger.Error("failed to load user for role check", zap.String("user_id", identity.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": msgAuthUnavailable,
			})
			return
		}

		if !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": msgPermissionDenied,
			})
			return
		}

		identity.Role = user.Role
		c.Request = c.Request.WithContext(WithIdentity(ctx, identity))
		c.Next()
	}
}

func (m *Middleware) unauthorized(c *gin.Context, message string, expired bool) {
	m.cookies.Clear(c.Writer)
	body := gin.H{
		"success": false,
		"message": message,
	}
	if expired {
		body["isTokenExpired"] = true
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, body)
}
