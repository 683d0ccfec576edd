package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(cfg.Logger))
	router.Use(RecoveryMiddleware(cfg.Logger))
	router.Use(CORSMiddleware(cfg.ClientURL))
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}
	router.Use(limitBody(cfg.MaxBodyBytes))

	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, trustedOrigins(cfg.ClientURL), cfg.Signer))
		router.GET("/api/csrf", func(c *gin.Context) {
			c.Header(auth.CSRFTokenHeader, auth.GetCSRFToken(c))
			respondOK(c, "", gin.H{"csrfToken": auth.GetCSRFToken(c)})
		})
	}

	if cfg.UploadsDir != "" {
		router.Static("/uploads", cfg.UploadsDir)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	users := NewUsersController(cfg.AuthService, cfg.Profiles, cfg.Borrowing, cfg.Cookies, cfg.Auditor)
	books := NewBooksController(cfg.Catalog, cfg.Borrowing, cfg.Auditor)
	reviews := NewReviewsController(cfg.Reviews, cfg.Auditor)
	admin := NewAdminController(cfg.Dashboard, cfg.Catalog, cfg.Auditor)

	authenticated := cfg.AuthMiddleware.Authenticate()
	adminOnly := cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	// Accounts
	user := api.Group("/user")
	user.POST("/register", users.Register)
	user.POST("/login", users.Login)
	user.GET("/logout", users.Logout)
	user.POST("/profile/update", authenticated, users.UpdateProfile)
	user.GET("/borrowedBooks", authenticated, users.BorrowedCount)
	user.POST("/borrowedBooks", authenticated, users.AddToLibrary)

	// Catalog and borrowing
	book := api.Group("/book")
	book.GET("/search", books.SearchBooks)
	book.GET("/getAll", authenticated, books.GetAllBooks)
	book.GET("/get/:id", authenticated, books.GetBook)
	book.POST("/borrow", authenticated, books.BorrowBook)
	book.GET("/getAllborrowedBooks", authenticated, books.GetAllBorrowedBooks)
	book.POST("/add", authenticated, adminOnly, books.AddBook)
	book.POST("/update/:bookId", authenticated, adminOnly, books.UpdateBook)
	book.DELETE("/delete/:bookId", authenticated, adminOnly, books.DeleteBook)

	// Reviews
	review := api.Group("/reviews")
	review.GET("/getAll/:id", reviews.GetReviews)
	review.POST("/add/:id", authenticated, reviews.AddReview)
	review.DELETE("/delete/:id", authenticated, reviews.DeleteReview)

	// Older clients delete through GET links
	if cfg.LegacyGetDeletes {
		sameSite := SameSiteOnly(cfg.ClientURL)
		book.GET("/delete/:bookId", sameSite, authenticated, adminOnly, books.DeleteBook)
		review.GET("/delete/:id", sameSite, authenticated, reviews.DeleteReview)
	}

	// Admin
	adminGroup := api.Group("/admin", authenticated, adminOnly)
	adminGroup.GET("/dashboard", admin.Dashboard)
	adminGroup.GET("/books", admin.Books)
	adminGroup.GET("/audit", admin.AuditEvents)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Success: false, Message: "Route not found"})
	})

	return router
}

// trustedOrigins returns the host of the frontend URL for the CSRF origin check.
func trustedOrigins(clientURL string) []string {
	u, err := url.Parse(clientURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
