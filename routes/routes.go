package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/ratelimit"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

// Deps is everything the handlers need.
type Deps struct {
	DB                *gorm.DB
	Tokens            *auth.Tokens
	Images            *storage.Store
	AuthLimiter       ratelimit.Limiter
	APILimiter        ratelimit.Limiter
	StoragePublicPath string
}

// SetupRoutes is the single entry point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", health(d.DB))
	r.StaticFS(d.StoragePublicPath, d.Images.HTTP())

	// Public auth routes, throttled per client IP
	SetupAuthRoutes(r, d)

	// Everything else needs a bearer token and is throttled per user
	api := r.Group("/")
	api.Use(middleware.RequireAuth(d.Tokens), middleware.RateLimit(d.APILimiter, middleware.ByUser))

	SetupUserRoutes(api, d)
	SetupOrderRoutes(api, d.DB)
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": "up"})
	}
}
