package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupAuthRoutes registers /register, /login and /logout.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/")
	authGroup.Use(middleware.RateLimit(d.AuthLimiter, middleware.ByClientIP))
	{
		authGroup.POST("/register", auth.Register(d.DB, d.Tokens))
		authGroup.POST("/login", auth.Login(d.DB, d.Tokens))
		authGroup.POST("/logout", middleware.RequireAuth(d.Tokens), auth.Logout(d.Tokens))
	}
}
