package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the header clients echo the CSRF token in.
const CSRFTokenHeader = "X-CSRF-Token"

const csrfContextKey = "csrf_token"

// CSRFMiddleware protects cookie-authenticated writes. Requests carrying a
// valid bearer token skip the check since browsers never attach that header
// on their own. Safe methods always pass and receive a fresh token.
// trustedOrigins lists the hosts (e.g. "localhost:5173") of cross-origin
// frontends allowed to submit writes.
func CSRFMiddleware(secret []byte, secure bool, trustedOrigins []string, signer TokenSigner) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.TrustedOrigins(trustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if hasValidBearer(c.Request, signer) {
			c.Next()
			return
		}

		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(csrfContextKey, csrf.Token(r))
			c.Request = r
			c.Next()
		}))
		r := c.Request
		if !secure {
			r = csrf.PlaintextHTTPRequest(r)
		}
		handler.ServeHTTP(c.Writer, r)

		// The error handler already wrote the response
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"success":false,"message":"CSRF token invalid or missing"}`))
}

func hasValidBearer(r *http.Request, signer TokenSigner) bool {
	token := bearerToken(r)
	if token == "" || signer == nil {
		return false
	}
	_, err := signer.Verify(token)
	return err == nil
}

// GetCSRFToken returns the token set by CSRFMiddleware.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}
