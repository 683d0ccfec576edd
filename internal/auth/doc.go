// Package auth issues and verifies the signed tokens that identify API
// callers, and provides the gin middleware that enforces them.
//
// A successful login returns a JWT both in the response body and in the
// "token" cookie. Authenticate accepts either the cookie or an
// "Authorization: Bearer" header and attaches an Identity to the request
// context:
//
//	router.GET("/api/user/borrowedBooks", mw.Authenticate(), handler)
//
//	identity, ok := auth.IdentityFrom(c.Request.Context())
//
// RequireRole re-reads the caller from the store and rejects roles that are
// not listed, so a demoted admin loses access without waiting for the token
// to expire:
//
//	admin := router.Group("/api/admin", mw.Authenticate(), mw.RequireRole(entities.UserRoleAdmin))
//
// # Configuration
//
//	AUTH_JWT_SECRET=<random string>  # Random per process if empty
//	AUTH_TOKEN_EXPIRY=1h             # Token validity
//	AUTH_COOKIE_LIFETIME=1h          # Cookie Max-Age, defaults to the token expiry
//	AUTH_BCRYPT_COST=10              # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true         # HTTPS-only cookies
//	REDIS_ADDR=localhost:6379        # Enables revocation of logged-out tokens
package auth
