package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/scan2share/scan2share/internal/api"
	"github.com/scan2share/scan2share/internal/auth"
	"github.com/scan2share/scan2share/internal/config"
	"github.com/scan2share/scan2share/internal/events"
	"github.com/scan2share/scan2share/internal/logging"
	"github.com/scan2share/scan2share/internal/ratelimit"
	"github.com/scan2share/scan2share/internal/rewards"
	"github.com/scan2share/scan2share/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize store
	dsn := cfg.DatabasePath
	if cfg.StorageBackend == store.BackendRedis {
		dsn = cfg.RedisURL
	}
	kv, err := store.Open(cfg.StorageBackend, dsn)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer kv.Close()

	bus := events.NewBus(logger)
	defer bus.Close()
	kinds := []string{
		rewards.ActivityAddressSet,
		rewards.ActivityEventCreated,
		rewards.ActivityEventExpired,
		rewards.ActivityEventDeleted,
		rewards.ActivityShareRecorded,
		rewards.ActivityShareVerified,
		rewards.ActivityStakeOpened,
		rewards.ActivityStakeClosed,
	}
	if err := bus.LogActivity(ctx, kinds...); err != nil {
		logger.Fatal("failed to subscribe activity log", zap.Error(err))
	}

	rewardStore, err := rewards.Open(ctx, kv,
		rewards.WithKey(cfg.StoreKey),
		rewards.WithPolicy(rewards.Policy{Strict: cfg.StrictMode, RequireKnownEvent: cfg.RequireKnownEvent}),
		rewards.WithDailyRate(cfg.DailyRewardRate),
		rewards.WithNotifier(bus),
		rewards.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("failed to load rewards state", zap.Error(err))
	}

	// Initialize services
	var limiter ratelimit.Limiter
	if rs, ok := kv.(*store.RedisStore); ok {
		limiter = ratelimit.NewRedisLimiter(rs.Client(), "scan2share:ratelimit:")
	} else {
		memLimiter := ratelimit.NewMemoryLimiter()
		memLimiter.StartCleanup(ctx, 5*time.Minute)
		limiter = memLimiter
	}

	authService := auth.NewService(cfg.ChallengeTTL, cfg.TokenTTL)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := authService.Cleanup(); n > 0 {
					logger.Debug("expired auth entries removed", zap.Int("count", n))
				}
			}
		}
	}()

	apiHandler := api.NewHandler(rewardStore, authService, limiter, cfg, logger)
	mux := http.NewServeMux()
	apiHandler.Register(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Info("starting scan2share",
		zap.String("addr", addr),
		zap.String("storage", cfg.StorageBackend),
		zap.Bool("strict", cfg.StrictMode),
	)

	// Create server with timeouts
	server := &http.Server{
		Addr:         addr,
		Handler:      api.LogRequests(logger)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if err := rewardStore.Flush(shutdownCtx); err != nil {
		logger.Error("final flush failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
