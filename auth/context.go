package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
)

const userIDKey = "auth.user_id"

// SetUserID records the authenticated caller on the request.
func SetUserID(c *gin.Context, id uint) {
	c.Set(userIDKey, id)
}

// UserID returns the authenticated caller, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// CurrentUser is UserID for handlers behind the auth middleware.
func CurrentUser(c *gin.Context) (uint, error) {
	id, ok := UserID(c)
	if !ok {
		return 0, apperr.Unauthorized("Unauthenticated.")
	}
	return id, nil
}
