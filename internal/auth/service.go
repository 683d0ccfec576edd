package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

var (
	ErrFieldsRequired     = apperr.Validation("All fields are required")
	ErrInvalidRole        = apperr.Validation("Invalid role")
	ErrEmailExists        = services.ErrEmailExists
	ErrUserNotFound       = services.ErrUserNotFound
	ErrInvalidCredentials = apperr.Validation("Invalid password or email")
	ErrRoleMismatch       = apperr.Forbidden("You are not authorized to access this resource")
	ErrTooManyAttempts    = apperr.RateLimited("Too many login attempts. Please try again later.")
	ErrPasswordLength     = apperr.Validation("Password must be at most 72 bytes")
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Fullname    string
	Email       string
	Password    string
	PhoneNumber string
	Role        entities.UserRole
}

// LoginInput carries credentials. ClientIP keys the rate limiter.
type LoginInput struct {
	Email    string
	Password string
	Role     entities.UserRole
	ClientIP string
}

// Session is the result of a successful login.
type Session struct {
	Token  string
	Claims *Claims
	User   *entities.User // BorrowedBooks is populated
}

// Service handles registration, login and logout.
type Service struct {
	users      services.UserStore
	borrowings services.BorrowingStore
	signer     TokenSigner
	limiter    *RateLimiter
	denylist   Denylist
	bcryptCost int
}

// NewService creates the authentication service. limiter and denylist may be nil.
func NewService(users services.UserStore, borrowings services.BorrowingStore, signer TokenSigner, limiter *RateLimiter, denylist Denylist, cfg config.Auth) *Service {
	return &Service{
		users:      users,
		borrowings: borrowings,
		signer:     signer,
		limiter:    limiter,
		denylist:   denylist,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates an account. A taken email fails with ErrEmailExists
// before anything is written.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entities.User, error) {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Email = services.NormalizeEmail(in.Email)
	if in.Fullname == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, ErrFieldsRequired
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	_, err := s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrEmailExists
	case !errors.Is(err, services.ErrRecordNotFound):
		return nil, apperr.Unexpected("Failed to register user", err)
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, ErrPasswordLength
		}
		return nil, apperr.Unexpected("Failed to register user", err)
	}

	user := &entities.User{
		Fullname:     in.Fullname,
		Email:        in.Email,
		PasswordHash: hash,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Role:         in.Role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, services.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, apperr.Unexpected("Failed to register user", err)
	}
	user.BorrowedBooks = []string{}
	return user, nil
}

// Login verifies the credentials and the requested role and issues a token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = services.NormalizeEmail(in.Email)
	if in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, ErrFieldsRequired
	}

	if s.limiter != nil {
		if allowed, _ := s.limiter.Allow(in.ClientIP, in.Email); !allowed {
			return nil, ErrTooManyAttempts
		}
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			s.recordFailure(in)
			return nil, ErrUserNotFound
		}
		return nil, apperr.Unexpected("Failed to log in", err)
	}

	if err := CheckPassword(in.Password, user.PasswordHash); err != nil {
		s.recordFailure(in)
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Unexpected("Failed to log in", err)
	}
	if user.Role != in.Role {
		return nil, ErrRoleMismatch
	}

	if s.limiter != nil {
		s.limiter.RecordSuccess(in.ClientIP, in.Email)
	}

	token, claims, err := s.signer.Sign(user.ID)
	if err != nil {
		return nil, apperr.Unexpected("Failed to log in", err)
	}

	ids, err := s.borrowings.BorrowedBookIDs(ctx, user.ID)
	if err != nil {
		return nil, apperr.Unexpected("Failed to log in", err)
	}
	user.BorrowedBooks = ids

	return &Session{Token: token, Claims: claims, User: user}, nil
}

func (s *Service) recordFailure(in LoginInput) {
	if s.limiter != nil {
		s.limiter.RecordFailure(in.ClientIP, in.Email)
	}
}

// Logout revokes the presented token when a denylist is configured. Missing
// or invalid tokens are ignored; the caller clears the cookie regardless.
func (s *Service) Logout(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, nil
	}
	if s.denylist != nil {
		if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return claims, apperr.Unexpected("Failed to log out", err)
		}
	}
	return claims, nil
}

// CreateAdmin registers an admin account, used by the create-admin command.
func (s *Service) CreateAdmin(ctx context.Context, fullname, email, password string) (*entities.User, error) {
	return s.Register(ctx, RegisterInput{
		Fullname: fullname,
		Email:    email,
		Password: password,
		Role:     entities.UserRoleAdmin,
	})
}
