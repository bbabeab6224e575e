package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/rs/zerolog"
)

const internalMessage = "Internal server error"

// JSON writes the {"ok": true, ...} envelope.
func JSON(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["ok"] = true
	c.JSON(status, body)
}

// Fail writes the {"ok": false, "message": ...} envelope.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "message": message})
}

// Error maps err onto a status code. Internal failures are logged with their
// cause and answered with an opaque message.
func Error(c *gin.Context, err error) {
	var e *apperr.Error
	if !asAppErr(err, &e) {
		e = apperr.Internal("unclassified", err)
	}

	if e.Kind == apperr.KindInternal {
		zerolog.Ctx(c.Request.Context()).Error().
			Err(e.Err).
			Str("op", e.Message).
			Msg("request failed")
		Fail(c, http.StatusInternalServerError, internalMessage)
		return
	}

	body := gin.H{"ok": false, "message": e.Message}
	if len(e.Fields) > 0 {
		body["errors"] = e.Fields
	}
	c.AbortWithStatusJSON(Status(e.Kind), body)
}

func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
