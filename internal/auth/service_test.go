package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type serviceFixture struct {
	db       *database.Database
	signer   *JWTSigner
	denylist *memoryDenylist
	service  *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db := newTestDB(t)
	signer := newTestSigner(t)
	denylist := newMemoryDenylist()
	limiter := NewRateLimiter(RateLimitConfig{MaxAttempts: 3})
	t.Cleanup(limiter.Stop)

	return &serviceFixture{
		db:       db,
		signer:   signer,
		denylist: denylist,
		service:  NewService(db, db, signer, limiter, denylist, testAuthConfig()),
	}
}

func (f *serviceFixture) register(t *testing.T, email string, role entities.UserRole) *entities.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), RegisterInput{
		Fullname: "Ada Lovelace",
		Email:    email,
		Password: "analytical-engine",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	valid := RegisterInput{Fullname: "Ada", Email: "ada@example.com", Password: "secret", Role: entities.UserRoleMember}
	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		wantErr error
	}{
		{"missing fullname", func(in *RegisterInput) { in.Fullname = "  " }, ErrFieldsRequired},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, ErrFieldsRequired},
		{"missing password", func(in *RegisterInput) { in.Password = "" }, ErrFieldsRequired},
		{"missing role", func(in *RegisterInput) { in.Role = "" }, ErrFieldsRequired},
		{"unknown role", func(in *RegisterInput) { in.Role = "librarian" }, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.service.Register(ctx, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("creates a hashed account", func(t *testing.T) {
		in := valid
		in.Email = " Ada@Example.com "
		user, err := f.service.Register(ctx, in)
		require.NoError(t, err)

		assert.Equal(t, "ada@example.com", user.Email)
		assert.NotEqual(t, "secret", user.PasswordHash)
		assert.NoError(t, CheckPassword("secret", user.PasswordHash))
		assert.Equal(t, []string{}, user.BorrowedBooks)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.service.Register(ctx, valid)
		assert.ErrorIs(t, err, ErrEmailExists)

		count, err := f.db.CountUsersByRole(ctx, entities.UserRoleMember)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	member := f.register(t, "member@example.com", entities.UserRoleMember)

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.service.Login(ctx, LoginInput{Email: "member@example.com", Role: entities.UserRoleMember})
		assert.ErrorIs(t, err, ErrFieldsRequired)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.service.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "x", Role: entities.UserRoleMember, ClientIP: "ip-1"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.service.Login(ctx, LoginInput{Email: "member@example.com", Password: "wrong", Role: entities.UserRoleMember, ClientIP: "ip-1"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("role mismatch", func(t *testing.T) {
		_, err := f.service.Login(ctx, LoginInput{Email: "member@example.com", Password: "analytical-engine", Role: entities.UserRoleAdmin, ClientIP: "ip-1"})
		assert.ErrorIs(t, err, ErrRoleMismatch)
	})

	t.Run("issues a token", func(t *testing.T) {
		session, err := f.service.Login(ctx, LoginInput{Email: "MEMBER@example.com", Password: "analytical-engine", Role: entities.UserRoleMember, ClientIP: "ip-1"})
		require.NoError(t, err)

		claims, err := f.signer.Verify(session.Token)
		require.NoError(t, err)
		assert.Equal(t, member.ID, claims.Subject)
		assert.Equal(t, member.ID, session.User.ID)
		assert.NotNil(t, session.User.BorrowedBooks)
	})
}

func TestService_LoginRateLimited(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.register(t, "member@example.com", entities.UserRoleMember)

	bad := LoginInput{Email: "member@example.com", Password: "wrong", Role: entities.UserRoleMember, ClientIP: "10.0.0.1"}
	for range 3 {
		_, err := f.service.Login(ctx, bad)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	good := bad
	good.Password = "analytical-engine"
	_, err := f.service.Login(ctx, good)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	good.ClientIP = "10.0.0.2"
	_, err = f.service.Login(ctx, good)
	assert.NoError(t, err)
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	claims, err := f.service.Logout(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, claims)

	claims, err = f.service.Logout(ctx, "garbage")
	assert.NoError(t, err)
	assert.Nil(t, claims)

	token, issued, err := f.signer.Sign("user-1")
	require.NoError(t, err)

	claims, err = f.service.Logout(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, claims.ID)

	revoked, err := f.denylist.IsRevoked(ctx, issued.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.WithinDuration(t, issued.ExpiresAt.Time, f.denylist.revoked[issued.ID], time.Second)
}

func TestService_CreateAdmin(t *testing.T) {
	f := newServiceFixture(t)

	admin, err := f.service.CreateAdmin(context.Background(), "Root", "root@example.com", "changeme")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}
