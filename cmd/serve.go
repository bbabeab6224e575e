package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/ratelimit"
	"github.com/junaidrashid-git/storefront-api/routes"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, !cfg.IsProduction())

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	images, err := storage.NewLocal(cfg.StorageDir)
	if err != nil {
		return err
	}

	authLimiter, apiLimiter, closeLimiters, err := newLimiters(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeLimiters()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(middleware.RequestLogger(log), middleware.Recovery(), cors.New(corsConfig(cfg)))

	routes.SetupRoutes(r, routes.Deps{
		DB:                db,
		Tokens:            auth.NewTokens(db, cfg.JWTSecret, cfg.TokenTTL),
		Images:            images,
		AuthLimiter:       authLimiter,
		APILimiter:        apiLimiter,
		StoragePublicPath: cfg.StoragePublicPath,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newLimiters shares counters through redis when REDIS_ADDR is set and
// keeps them in process otherwise.
func newLimiters(ctx context.Context, cfg *config.Config, log zerolog.Logger) (authL, apiL ratelimit.Limiter, closeFn func(), err error) {
	authCfg := ratelimit.Config{Name: "auth", Limit: cfg.RateLimitAuth, Window: cfg.RateLimitWindow}
	apiCfg := ratelimit.Config{Name: "api", Limit: cfg.RateLimitAPI, Window: cfg.RateLimitWindow}

	if cfg.RedisAddr == "" {
		log.Info().Msg("rate limiter: in memory")
		return ratelimit.NewMemory(authCfg), ratelimit.NewMemory(apiCfg), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("rate limiter: redis")
	return ratelimit.NewRedis(client, authCfg), ratelimit.NewRedis(client, apiCfg), func() { client.Close() }, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	origins := cfg.AllowedOrigins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}
