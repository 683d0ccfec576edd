package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type middlewareFixture struct {
	signer   *JWTSigner
	denylist *memoryDenylist
	router   *gin.Engine
	admin    *entities.User
	member   *entities.User
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()

	admin := &entities.User{Fullname: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: entities.UserRoleAdmin}
	member := &entities.User{Fullname: "Member", Email: "member@example.com", PasswordHash: "x", Role: entities.UserRoleMember}
	require.NoError(t, db.CreateUser(ctx, admin))
	require.NoError(t, db.CreateUser(ctx, member))

	f := &middlewareFixture{
		signer:   newTestSigner(t),
		denylist: newMemoryDenylist(),
		admin:    admin,
		member:   member,
	}
	mw := NewMiddleware(f.signer, f.denylist, db, Cookies{MaxAge: time.Hour}, zap.NewNop())

	identityHandler := func(c *gin.Context) {
		identity, ok := IdentityFrom(c.Request.Context())
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": identity.UserID, "role": identity.Role})
	}

	f.router = gin.New()
	f.router.GET("/me", mw.Authenticate(), identityHandler)
	f.router.GET("/admin", mw.Authenticate(), mw.RequireRole(entities.UserRoleAdmin), identityHandler)
	return f
}

func (f *middlewareFixture) token(t *testing.T, userID string) (string, *Claims) {
	t.Helper()
	token, claims, err := f.signer.Sign(userID)
	require.NoError(t, err)
	return token, claims
}

func (f *middlewareFixture) do(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	var body map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return rr, body
}

func TestAuthenticate_Rejections(t *testing.T) {
	f := newMiddlewareFixture(t)

	expiredSigner := newTestSigner(t)
	expiredSigner.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredSigner.Sign(f.member.ID)
	require.NoError(t, err)

	revoked, revokedClaims := f.token(t, f.member.ID)
	require.NoError(t, f.denylist.Revoke(context.Background(), revokedClaims.ID, revokedClaims.ExpiresAt.Time))

	tests := []struct {
		name        string
		token       string
		wantMessage string
		wantExpired bool
	}{
		{"no token", "", msgAuthRequired, false},
		{"expired", expired, msgSessionExpired, true},
		{"garbage", "abc.def.ghi", msgInvalidSession, false},
		{"revoked", revoked, msgInvalidSession, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tt.token})
			}

			rr, body := f.do(req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMessage, body["message"])
			if tt.wantExpired {
				assert.Equal(t, true, body["isTokenExpired"])
			} else {
				assert.NotContains(t, body, "isTokenExpired")
			}
			assert.Contains(t, rr.Header().Get("Set-Cookie"), TokenCookieName+"=;")
		})
	}
}

func TestAuthenticate_AcceptsCookieAndBearer(t *testing.T) {
	f := newMiddlewareFixture(t)
	token, _ := f.token(t, f.member.ID)

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})

		rr, body := f.do(req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, f.member.ID, body["userId"])
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rr, body := f.do(req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, f.member.ID, body["userId"])
	})
}

func TestRequireRole(t *testing.T) {
	f := newMiddlewareFixture(t)

	t.Run("admin passes with role attached", func(t *testing.T) {
		token, _ := f.token(t, f.admin.ID)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rr, body := f.do(req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, string(entities.UserRoleAdmin), body["role"])
	})

	t.Run("member is forbidden", func(t *testing.T) {
		token, _ := f.token(t, f.member.ID)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rr, body := f.do(req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, msgPermissionDenied, body["message"])
	})

	t.Run("deleted user", func(t *testing.T) {
		token, _ := f.token(t, "no-such-user")
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rr, body := f.do(req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "User not found", body["message"])
	})
}
