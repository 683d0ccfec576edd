package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/services"
)

var (
	errInvalidBody  = apperr.Validation("Invalid request body")
	errFileTooLarge = apperr.Validation("Uploaded file is too large")
	errInvalidEmail = apperr.Validation("Invalid email address")
)

type registerRequest struct {
	Fullname    string `json:"fullname" form:"fullname" binding:"required"`
	Email       string `json:"email" form:"email" binding:"required"`
	Password    string `json:"password" form:"password" binding:"required"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	Role        string `json:"role" form:"role" binding:"required,oneof=admin member"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
	Role     string `json:"role" form:"role" binding:"required"`
}

type profileRequest struct {
	Fullname    string `form:"fullname" json:"fullname"`
	Email       string `form:"email" json:"email" binding:"omitempty,email"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber"`
	Bio         string `form:"bio" json:"bio"`
}

type libraryRequest struct {
	BookID string `json:"bookId" form:"bookId" binding:"required"`
}

type bookRequest struct {
	Title       string  `form:"title" json:"title" binding:"required"`
	Author      string  `form:"author" json:"author" binding:"required"`
	Category    string  `form:"category" json:"category" binding:"required"`
	ISBN        string  `form:"isbn" json:"isbn" binding:"required"`
	Description string  `form:"description" json:"description" binding:"required"`
	BookPrice   float64 `form:"bookPrice" json:"bookPrice" binding:"required,gt=0"`
}

type bookUpdateRequest struct {
	Title       string  `form:"title" json:"title"`
	Author      string  `form:"author" json:"author"`
	Category    string  `form:"category" json:"category"`
	ISBN        string  `form:"isbn" json:"isbn"`
	Description string  `form:"description" json:"description"`
	BookPrice   float64 `form:"bookPrice" json:"bookPrice" binding:"omitempty,gt=0"`
}

type borrowRequest struct {
	BookID     string `json:"bookId" form:"bookId" binding:"required"`
	AccessType string `json:"accessType" form:"accessType" binding:"required,oneof=Buy Subscribe"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" form:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" form:"comment"`
}

type auditQuery struct {
	UserID    string `form:"userId"`
	EventType string `form:"eventType"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset    int    `form:"offset" binding:"omitempty,min=0"`
}

// Messages reported for each failed validation tag, per request type.
// Tags without an entry fall back to the request's "required" message.
var (
	registerRules = bindingRules{"required": auth.ErrFieldsRequired, "oneof": auth.ErrInvalidRole}
	loginRules    = bindingRules{"required": auth.ErrFieldsRequired}
	profileRules  = bindingRules{"email": errInvalidEmail}
	libraryRules  = bindingRules{"required": services.ErrBookIDRequired}
	bookRules     = bindingRules{"required": services.ErrBookFieldsRequired}
	updateRules   = bindingRules{"gt": services.ErrInvalidBookPrice}
	borrowRules   = bindingRules{"required": services.ErrBorrowFieldsRequired, "oneof": services.ErrInvalidAccessType}
	reviewRules   = bindingRules{"required": services.ErrInvalidRating}
	auditRules    = bindingRules{"required": apperr.Validation("Invalid paging parameters")}
)

type bindingRules map[string]error

// bindingError translates a binding failure into a client-facing error.
func (rules bindingRules) bindingError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return errFileTooLarge
	}

	if errors.Is(err, io.EOF) {
		if fallback, ok := rules["required"]; ok {
			return fallback
		}
		return errInvalidBody
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errInvalidBody
	}
	if mapped, ok := rules[verrs[0].Tag()]; ok {
		return mapped
	}
	if fallback, ok := rules["required"]; ok {
		return fallback
	}
	return errInvalidBody
}

// bind decodes the body by content type and validates it.
func bind(c *gin.Context, req any, rules bindingRules) bool {
	if err := c.ShouldBind(req); err != nil {
		respondError(c, rules.bindingError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any, rules bindingRules) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondError(c, rules.bindingError(err))
		return false
	}
	return true
}
