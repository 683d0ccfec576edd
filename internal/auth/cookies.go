package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/mrlokans/bookshelf/internal/config"
)

// TokenCookieName is the cookie holding the access token.
const TokenCookieName = "token"

// Cookies writes the token cookie. Login and logout share every attribute so
// browsers always replace the same cookie.
type Cookies struct {
	Secure bool
	MaxAge time.Duration
}

func NewCookies(cfg config.Auth) Cookies {
	return Cookies{Secure: cfg.SecureCookies, MaxAge: cfg.CookieMaxAge()}
}

func (c Cookies) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(token, int(c.MaxAge.Seconds())))
}

// Clear expires the token cookie.
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c Cookies) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     TokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest returns the token from the cookie, falling back to an
// "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return bearerToken(r)
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
