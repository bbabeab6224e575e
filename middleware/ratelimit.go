package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/ratelimit"
	"github.com/junaidrashid-git/storefront-api/response"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c *gin.Context) string

func ByClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ByUser falls back to the client IP for anonymous requests.
func ByUser(c *gin.Context) string {
	if id, ok := auth.UserID(c); ok {
		return "user:" + strconv.FormatUint(uint64(id), 10)
	}
	return ByClientIP(c)
}

func RateLimit(l ratelimit.Limiter, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), key(c))
		if err != nil {
			response.Error(c, apperr.Internal("rate limit", err))
			return
		}
		if !allowed {
			response.Fail(c, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		c.Next()
	}
}
