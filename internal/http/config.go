package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/services"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	Signer         auth.TokenSigner
	Cookies        auth.Cookies
	Catalog        *services.CatalogService
	Borrowing      *services.BorrowingService
	Reviews        *services.ReviewService
	Dashboard      *services.DashboardService
	Profiles       *services.ProfileService
	Auditor        *audit.Service
	Logger         *zap.Logger

	// Health checks
	Database Pinger
	Version  string

	// Frontend origin allowed by CORS and trusted by CSRF
	ClientURL string

	// CSRF protection for cookie-authenticated writes; empty disables it
	CSRFSecret    []byte
	SecureCookies bool

	// Also serve the delete routes over GET, guarded against cross-site use
	LegacyGetDeletes bool

	// Request body cap in bytes; zero disables it
	MaxBodyBytes int64

	// Directory served under /uploads; empty when assets live elsewhere
	UploadsDir string
}
