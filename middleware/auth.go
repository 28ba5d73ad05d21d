package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	usermodel "snapcap/module/user/model"
	usersvc "snapcap/module/user/service"
	"snapcap/tools/errs"
	"snapcap/tools/httpx"
	"snapcap/tools/security"
)

// Context keys set by the auth middleware.
const (
	CtxUserKey   = "currentUser" // *usermodel.User
	CtxUserIDKey = "userId"      // string
)

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) string {
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if authz == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return authz
}

// Authenticate verifies the bearer token, loads the user and attaches it to
// the request context. Missing, invalid and expired tokens answer 401 with
// distinct messages. Failure never mutates state.
func Authenticate(opts security.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			httpx.Fail(c, errs.ErrTokenMissing.Wrap())
			return
		}
		claims, err := security.Verify(opts, token)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		u, err := usersvc.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			httpx.Fail(c, errs.ErrTokenInvalid.WrapMsg("user no longer exists"))
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.UserID)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and proceeds
// anonymously otherwise.
func OptionalAuth(opts security.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		claims, err := security.Verify(opts, token)
		if err != nil {
			c.Next()
			return
		}
		if u, err := usersvc.GetByID(c.Request.Context(), claims.UserID); err == nil {
			c.Set(CtxUserKey, u)
			c.Set(CtxUserIDKey, u.UserID)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil under OptionalAuth.
func CurrentUser(c *gin.Context) *usermodel.User {
	if v, ok := c.Get(CtxUserKey); ok {
		if u, ok := v.(*usermodel.User); ok {
			return u
		}
	}
	return nil
}

// CurrentUserID returns the authenticated user id or "".
func CurrentUserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

// RequireOwner rejects with 403 when the requester is not the author of the
// resource, as resolved by lookup.
func RequireOwner(c *gin.Context, authorID string) bool {
	if CurrentUserID(c) != authorID {
		httpx.Fail(c, errs.ErrForbidden.Wrap())
		return false
	}
	return true
}

// RequireNotBlocked rejects cross-interaction when either party has blocked
// the other.
func RequireNotBlocked(c *gin.Context, other *usermodel.User) bool {
	me := CurrentUser(c)
	if me == nil || other == nil {
		return true
	}
	if me.IsBlockedEither(other) {
		httpx.Fail(c, errs.ErrBlocked.Wrap())
		return false
	}
	return true
}
