package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/techind/novalink-admin/internal/config"
	"github.com/techind/novalink-admin/internal/db"
	"github.com/techind/novalink-admin/internal/logging"
	"github.com/techind/novalink-admin/internal/repository/postgres"
	"github.com/techind/novalink-admin/internal/service"
	transport "github.com/techind/novalink-admin/internal/transport/http"
)

func main() {
	cfg := config.Load()

	if closer := logging.Setup(cfg.LogLevel, cfg.LogPretty, cfg.LogstashTCPAddr); closer != nil {
		defer closer.Close()
	}

	pools := db.NewPoolCache(db.PoolConfig{
		BaseURL:        cfg.DatabaseURL,
		MaxOpen:        cfg.PoolMaxOpen,
		MaxIdle:        cfg.PoolMaxIdle,
		Recycle:        cfg.PoolRecycle,
		ConnectTimeout: cfg.ConnectTimeout,
	})
	defer pools.Close()

	facade := db.NewFacade(pools, cfg.ControlDB, cfg.QueryTimeout)

	tenantRepo := postgres.NewTenantRepo(facade, cfg.CatalogDB)
	sessionRepo := postgres.NewSessionRepo(facade, cfg.ControlDB)
	userRepo := postgres.NewUserRepo(facade)

	tenants := service.NewTenantService(tenantRepo)
	sessions := service.NewSessionService(sessionRepo, cfg.SessionTTL)
	auth := service.NewAuthService(tenants, pools, userRepo, sessions)

	e := transport.NewRouter(cfg.AllowOrigins)
	transport.RegisterSwagger(e)
	transport.RegisterPages(e)
	transport.NewAuthHandler(auth, sessions, tenants, userRepo).Register(e)
	transport.NewUserHandler(auth, sessions).Register(e)
	transport.NewHolidayHandler(facade, sessions).Register(e)
	transport.NewParameterHandler(facade, sessions).Register(e)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("server started")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
