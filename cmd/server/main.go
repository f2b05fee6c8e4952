package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"rawbazaar/backend/internal/cache"
	"rawbazaar/backend/internal/config"
	"rawbazaar/backend/internal/domain"
	"rawbazaar/backend/internal/httpapi"
	"rawbazaar/backend/internal/i18n"
	"rawbazaar/backend/internal/logging"
	"rawbazaar/backend/internal/metrics"
	"rawbazaar/backend/internal/service"
	"rawbazaar/backend/internal/store"
	"rawbazaar/backend/internal/store/memory"
	pgstore "rawbazaar/backend/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	logging.Setup(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid security configuration")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	blobs, closers, err := openSnapshots(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("snapshot storage unavailable")
	}

	repo, restored := memory.Load(ctx, blobs, cfg.SnapshotKey)
	log.Info().Bool("restored", restored).Str("key", cfg.SnapshotKey).Msg("state loaded")

	recorder := metrics.New()
	svc := service.New(repo, i18n.MustNew(),
		service.WithSnapshots(blobs, cfg.SnapshotKey),
		service.WithMetrics(recorder),
		service.WithDefaultActor(demoActor(cfg)),
	)
	sessions := httpapi.NewSessionManager(cfg.SessionSecret, time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	api := httpapi.New(svc, sessions, cfg.AllowedOrigin,
		httpapi.WithMetrics(recorder),
		httpapi.WithDefaultLanguage(cfg.DefaultLanguage),
	)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Address()).
			Str("env", cfg.AppEnv).
			Str("demo_actor", svc.DefaultActor().Key()).
			Msg("marketplace backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	if err := svc.Save(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("final snapshot failed")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}

// openSnapshots picks where state snapshots live: Postgres when
// DATABASE_URL is set, then Redis, then process memory.
func openSnapshots(ctx context.Context, cfg config.Config) (store.BlobStore, []func() error, error) {
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set: %w", err)
		}
		if err := pg.Migrate(); err != nil {
			_ = pg.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info().Msg("snapshots: postgres")
		return pg, []func() error{pg.Close}, nil
	}

	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisBlobStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 0)
		if err := rdb.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, keeping snapshots in memory")
			_ = rdb.Close()
		} else {
			log.Info().Msg("snapshots: redis")
			return rdb, []func() error{rdb.Close}, nil
		}
	}

	log.Info().Msg("snapshots: in-memory")
	return cache.NewMemoryBlobStore(), nil, nil
}

// demoActor is the identity used by requests that carry no session token.
func demoActor(cfg config.Config) domain.Actor {
	return domain.Actor{UserID: cfg.DemoUserID, UserType: domain.UserType(cfg.DemoUserType)}
}

func validateSecurityConfig(cfg config.Config) error {
	if cfg.IsProduction() && len(cfg.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be set and at least 32 characters in production")
	}
	if cfg.SessionSecret != "" && len(cfg.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	if !demoActor(cfg).Valid() {
		return fmt.Errorf("DEMO_USER_TYPE and DEMO_USER_ID must name a vendor or supplier")
	}
	return nil
}
