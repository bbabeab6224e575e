package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/response"
	"github.com/rs/zerolog"
)

// RequireAuth accepts "Authorization: Bearer <token>" and records the caller
// with auth.SetUserID.
func RequireAuth(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		userID, err := tokens.Verify(c.Request.Context(), raw)
		if errors.Is(err, auth.ErrInvalidToken) {
			response.Fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		if err != nil {
			response.Error(c, apperr.Internal("verify token", err))
			return
		}

		auth.SetUserID(c, userID)
		l := zerolog.Ctx(c.Request.Context()).With().Uint("user_id", userID).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
