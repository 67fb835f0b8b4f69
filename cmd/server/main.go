// Command server runs the user-service HTTP API: account registration with
// email verification codes, sessions, password recovery, and profiles.
//
// Startup order:
//  1. Load .env (best effort) and environment configuration
//  2. Configure zerolog (level, optional pretty console output)
//  3. Set up OpenTelemetry tracing (no-op unless enabled)
//  4. Open SQLite, run migrations, load the throttle policy
//  5. Start the async mail worker and the HTTP server
//
// Shutdown is graceful: SIGINT/SIGTERM drains in-flight requests, the mail
// queue, and the tracer before exit.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/grammar-azi/user-service/internal/auth"
	"github.com/grammar-azi/user-service/internal/config"
	"github.com/grammar-azi/user-service/internal/domain"
	httpapi "github.com/grammar-azi/user-service/internal/http"
	"github.com/grammar-azi/user-service/internal/mail"
	"github.com/grammar-azi/user-service/internal/observability"
	"github.com/grammar-azi/user-service/internal/repo"
	"github.com/grammar-azi/user-service/internal/sysutil"

	_ "github.com/grammar-azi/user-service/docs"
)

// version is stamped via -ldflags at build time.
var version = "dev"

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Fatal().Err(err).Msg("gorm tracing plugin failed")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	policy, err := repo.GetOrCreateThrottlePolicy(ctx, db,
		cfg.Throttle.SendLimit, cfg.Throttle.ExpirationWindow, cfg.Throttle.ResetWindow)
	if err != nil {
		log.Fatal().Err(err).Msg("load throttle policy failed")
	}
	if cfg.Throttle.Sync {
		// THROTTLE_SYNC forces the stored policy back to the environment
		// values; without it the persisted row wins.
		policy = domain.ThrottlePolicy{
			Limit:            cfg.Throttle.SendLimit,
			ExpirationWindow: cfg.Throttle.ExpirationWindow,
			ResetWindow:      cfg.Throttle.ResetWindow,
		}
		if err := repo.UpdateThrottlePolicy(ctx, db, policy); err != nil {
			log.Fatal().Err(err).Msg("sync throttle policy failed")
		}
		policy.ID = 1
	}
	log.Info().
		Int("limit", policy.Limit).
		Dur("expiration_window", policy.ExpirationWindow).
		Dur("reset_window", policy.ResetWindow).
		Msg("throttle policy loaded")

	sender := mail.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	mailer := mail.NewAsyncMailer(sender, cfg.SMTP.QueueSize)

	tokens := &auth.Manager{
		Secret:     []byte(cfg.JWT.Secret),
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}

	// Periodically drop denylist rows for refresh tokens that expired on
	// their own.
	purgeCtx, stopPurge := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-purgeCtx.Done():
				return
			case <-ticker.C:
				if n, err := repo.PurgeExpiredTokens(purgeCtx, db, time.Now().UTC()); err != nil {
					log.Warn().Err(err).Msg("revoked-token purge failed")
				} else if n > 0 {
					log.Debug().Int64("purged", n).Msg("revoked-token purge")
				}
			}
		}
	}()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:     db,
		Mailer: mailer,
		Tokens: tokens,
		Policy: policy,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	stopPurge()

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	mailer.Close()
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown error")
	}
	log.Info().Msg("bye")
}
