package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/auth"
)

// --- Response Types ---

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PaginatedResponse wraps one page of results with paging metadata.
type PaginatedResponse struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

const (
	msgInternalError     = "Something went wrong"
	msgCrossSiteRejected = "Cross-site request rejected"
)

// --- Error Response Helpers ---

// statusFor maps an error kind to its HTTP status. Conflicts are reported
// as 400 to stay compatible with existing clients.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the envelope for err. The wrapped cause is attached
// to the gin context for the request logger and never sent to the client.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(apperr.KindOf(err)), ErrorResponse{
		Success: false,
		Message: apperr.MessageOf(err, msgInternalError),
	})
}

// --- Success Response Helpers ---

// respondOK sends a 200 envelope with the message and any extra fields.
func respondOK(c *gin.Context, message string, fields gin.H) {
	respond(c, http.StatusOK, message, fields)
}

// respondCreated sends a 201 envelope with the message and any extra fields.
func respondCreated(c *gin.Context, message string, fields gin.H) {
	respond(c, http.StatusCreated, message, fields)
}

func respond(c *gin.Context, status int, message string, fields gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// --- Request Context ---

// requireIdentity returns the caller attached by the auth middleware, or
// responds 401 when the route was registered without it.
func requireIdentity(c *gin.Context) (auth.Identity, bool) {
	identity, ok := auth.IdentityFrom(c.Request.Context())
	if !ok || identity.UserID == "" {
		_ = c.Error(errors.New("handler reached without an identity"))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "Authentication required. Please log in."})
		return auth.Identity{}, false
	}
	return identity, true
}

// userAgent returns the request's User-Agent header.
func userAgent(c *gin.Context) string {
	return c.GetHeader("User-Agent")
}
