package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/iliyamo/propconsole/internal/auth"
	"github.com/iliyamo/propconsole/internal/config"
	"github.com/iliyamo/propconsole/internal/database"
	"github.com/iliyamo/propconsole/internal/handler"
	"github.com/iliyamo/propconsole/internal/metrics"
	"github.com/iliyamo/propconsole/internal/middleware"
	"github.com/iliyamo/propconsole/internal/repository"
	"github.com/iliyamo/propconsole/internal/router"
	"github.com/iliyamo/propconsole/internal/service"
	"github.com/iliyamo/propconsole/internal/session"
	"github.com/iliyamo/propconsole/internal/view"
	"github.com/iliyamo/propconsole/internal/web"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP console and API",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			idle, _ := cmd.Flags().GetDuration("workspace-idle")
			return serve(migrate, idle)
		},
	}
	cmd.Flags().Bool("migrate", false, "apply the schema before serving")
	cmd.Flags().Duration("workspace-idle", 30*time.Minute, "evict browser workspaces idle for longer than this")
	return cmd
}

func openDB(cfg config.Config) (*sql.DB, error) {
	return database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

func serve(migrate bool, idle time.Duration) error {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	authSvc := auth.NewService(users, tokens, auth.Options{
		Secret:         cfg.JWTSecret,
		AccessTTL:      time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	})

	var backend session.Backend = session.NewMemoryBackend()
	if rdb != nil {
		backend = session.NewRedisBackend(rdb, cfg.SessionPrefix)
	}
	sessions := session.New(backend, authSvc)
	defer sessions.Close()
	go sessions.Start(ctx)

	collector := metrics.New()
	deps := view.Deps{
		Properties: repository.NewPropertyRepo(db),
		Clients:    repository.NewClientRepo(db),
		Leases:     repository.NewLeaseRepo(db),
		Notifier:   service.NewLeasePublisher(config.LoadQueueConfig()),
		Observer:   collector,
	}
	workspaces := view.NewRegistry(deps)
	workspaces.Attach(authSvc)
	defer workspaces.Close()
	go workspaces.Run(ctx, time.Minute, idle)
	collector.Gauge("propconsole_workspaces", "live browser workspaces", func() float64 {
		return float64(workspaces.Len())
	})

	renderer, err := web.New()
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler(e)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Printf("http: %s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	rl := config.LoadRateLimitConfig()
	e.Use(middleware.NewTokenBucket(rl, rdb))
	loginLimit := middleware.NewTokenBucket(rl.Login(), rdb)
	cache := middleware.NewCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, handler.Health(map[string]handler.Pinger{"database": db}), collector.Handler())
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), cfg.JWTSecret, loginLimit)
	router.RegisterAPI(e, handler.NewAPIHandler(deps), cfg.JWTSecret, cache)
	router.RegisterConsole(e, handler.NewConsoleHandler(authSvc, workspaces, renderer, cfg.CookieSecure), sessions, loginLimit, cache.Invalidate())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Println("shutting down")
	return e.Shutdown(shutdownCtx)
}
