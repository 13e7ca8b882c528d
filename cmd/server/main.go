// Swasthya Bandhu - healthcare intake server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/api"
	"github.com/ashureev/swasthya-bandhu/internal/config"
	"github.com/ashureev/swasthya-bandhu/internal/identity"
	"github.com/ashureev/swasthya-bandhu/internal/intake"
	"github.com/ashureev/swasthya-bandhu/internal/live"
	"github.com/ashureev/swasthya-bandhu/internal/middleware"
	"github.com/ashureev/swasthya-bandhu/internal/notify"
	"github.com/ashureev/swasthya-bandhu/internal/probe"
	"github.com/ashureev/swasthya-bandhu/internal/store"
	"github.com/ashureev/swasthya-bandhu/internal/transcript"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "db_driver", cfg.Database.Driver)

	// Initialize dependencies.
	repo, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	notifier := notify.Notifier(notify.Nop{})
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, 64, logger)
		if err != nil {
			slog.Warn("Failed to initialize Telegram notifier, booking notifications disabled", "error", err)
		} else {
			defer tg.Close(5 * time.Second)
			notifier = tg
			slog.Info("Telegram booking notifications enabled")
		}
	}

	transcripts, closeTranscripts, err := transcript.New(transcript.Config{
		Enabled:   cfg.ConversationLog.Enabled,
		Dir:       cfg.ConversationLog.Dir,
		QueueSize: cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := closeTranscripts(); closeErr != nil {
			slog.Warn("Failed to close conversation logger", "error", closeErr)
		}
	}()

	// Initialize handlers.
	chatLimiter := api.NewRateLimiter(cfg.Chat.RateLimit, cfg.Chat.RateWindow)
	defer chatLimiter.Close()

	apiHandler := api.NewHandler(repo, api.Options{
		Notifier:          notifier,
		ChatLimiter:       chatLimiter,
		BookingWindowDays: cfg.Intake.BookingWindowDays,
	})
	healthHandler := api.NewHealthHandler(repo, cfg.Timeout.HealthCheck)

	sm := live.NewSessionManager(live.IntakeFactory(live.IntakeConfig{
		BackendURL:     cfg.Backend.URL,
		BackendTimeout: cfg.Backend.Timeout,
		Options: intake.Options{
			SplashDelay:       cfg.Intake.SplashDelay,
			BookingWindowDays: cfg.Intake.BookingWindowDays,
			Transcript:        transcripts,
		},
		Logger: logger,
	}), logger)
	wsHandler := live.NewWebSocketHandler(repo, sm, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(allowedOrigins(cfg)))

	// Public routes.
	healthHandler.RegisterHealth(r)

	// Everything else is tied to a visitor.
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(repo, cfg.IsDevelopment()))
		apiHandler.RegisterRoutes(r)
		r.Get("/ws/intake", wsHandler.ServeHTTP)
		r.Post("/end_session", wsHandler.EndSession)
	})

	// Create server.
	// Note: websocket connections are long-lived, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	live.StartSweeper(ctx, sm, time.Minute, cfg.Intake.SessionTTL)

	var healthProbe *probe.Server
	if cfg.GRPCHealthPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCHealthPort)
		if err != nil {
			slog.Error("Failed to listen for gRPC health probe", "port", cfg.GRPCHealthPort, "error", err)
			os.Exit(1)
		}
		healthProbe = probe.New(repo, probe.Config{Timeout: cfg.Timeout.HealthCheck}, logger)
		go healthProbe.Run(ctx)
		go func() {
			if err := healthProbe.Serve(lis); err != nil {
				slog.Error("gRPC health probe failed", "error", err)
			}
		}()
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	if healthProbe != nil {
		healthProbe.Stop(5 * time.Second)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	sm.CloseAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

func openStore(cfg *config.Config) (store.Repository, error) {
	retry := store.WithRetry(cfg.Retry.DatabaseMaxRetries, cfg.Retry.DatabaseRetryBaseDelay)
	if cfg.Database.Driver == config.DriverPostgres {
		return store.NewPostgres(cfg.Database.URL, retry)
	}
	return store.NewSQLite(cfg.Database.Path, retry)
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.IsDevelopment() {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
