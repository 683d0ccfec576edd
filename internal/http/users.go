package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

// UsersController serves registration, login, logout and the caller's
// own account.
type UsersController struct {
	auth      *auth.Service
	profiles  *services.ProfileService
	borrowing *services.BorrowingService
	cookies   auth.Cookies
	auditor   *audit.Service
}

func NewUsersController(authService *auth.Service, profiles *services.ProfileService, borrowing *services.BorrowingService, cookies auth.Cookies, auditor *audit.Service) *UsersController {
	return &UsersController{
		auth:      authService,
		profiles:  profiles,
		borrowing: borrowing,
		cookies:   cookies,
		auditor:   auditor,
	}
}

func (uc *UsersController) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req, registerRules) {
		return
	}

	user, err := uc.auth.Register(c.Request.Context(), auth.RegisterInput{
		Fullname:    req.Fullname,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Role:        entities.UserRole(req.Role),
	})
	userID := ""
	if user != nil {
		userID = user.ID
	}
	uc.auditor.LogAuth(userID, audit.ActionRegister, req.Email, c.ClientIP(), userAgent(c), err)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, "User registered successfully", gin.H{"user": user})
}

func (uc *UsersController) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req, loginRules) {
		return
	}

	session, err := uc.auth.Login(c.Request.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     entities.UserRole(req.Role),
		ClientIP: c.ClientIP(),
	})
	userID := ""
	if session != nil {
		userID = session.User.ID
	}
	uc.auditor.LogAuth(userID, audit.ActionLogin, req.Email, c.ClientIP(), userAgent(c), err)
	if err != nil {
		respondError(c, err)
		return
	}

	uc.cookies.Set(c.Writer, session.Token)
	respondOK(c, "Welcome back "+session.User.Fullname, gin.H{
		"user":  session.User,
		"token": session.Token,
	})
}

// Logout clears the token cookie. A presented token is revoked when a
// denylist is configured.
func (uc *UsersController) Logout(c *gin.Context) {
	claims, err := uc.auth.Logout(c.Request.Context(), auth.TokenFromRequest(c.Request))
	uc.cookies.Clear(c.Writer)
	if claims != nil {
		uc.auditor.LogAuth(claims.Subject, audit.ActionLogout, "", c.ClientIP(), userAgent(c), err)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Logged out successfully", nil)
}

func (uc *UsersController) UpdateProfile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req profileRequest
	if !bind(c, &req, profileRules) {
		return
	}
	photo, closePhoto, err := formUpload(c, "file")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closePhoto()

	user, err := uc.profiles.UpdateProfile(c.Request.Context(), identity.UserID, services.ProfileUpdate{
		Fullname:    req.Fullname,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
	}, photo)
	uc.auditor.LogProfile(identity.UserID, err)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Profile updated successfully", gin.H{"user": user})
}

// BorrowedCount reports how many books the caller holds.
func (uc *UsersController) BorrowedCount(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	count, err := uc.borrowing.CountBorrowed(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Number of borrowed books"
	if count == 0 {
		message = "No borrowed books found"
	}
	respondOK(c, message, gin.H{"count": count})
}

// AddToLibrary records a purchase of the book for the caller and returns
// the user with the books now in their library.
func (uc *UsersController) AddToLibrary(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req libraryRequest
	if !bind(c, &req, libraryRules) {
		return
	}

	user, books, err := uc.borrowing.AddToLibrary(c.Request.Context(), identity.UserID, req.BookID)
	uc.auditor.LogBorrow(identity.UserID, audit.ActionLibraryAdd, req.BookID, entities.AccessTypeBuy, err)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Book added to your library", gin.H{
		"user": libraryUser{User: user, BorrowedBooks: books},
	})
}

// libraryUser renders borrowedBooks as the full books instead of ids.
type libraryUser struct {
	*entities.User
	BorrowedBooks []entities.Book `json:"borrowedBooks"`
}
