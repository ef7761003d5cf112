// Command server is the fingerprint enrollment and verification API
// binary. It loads a YAML configuration file, opens either a PostgreSQL
// connection pool or a local sqlite dev store, exposes a REST API over
// HTTP, and shuts down gracefully on SIGTERM or SIGINT.
package main

import (
	"context"
	"crypto/rsa"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobbydeveaux/fpmatch-service/internal/audit"
	"github.com/bobbydeveaux/fpmatch-service/internal/config"
	"github.com/bobbydeveaux/fpmatch-service/internal/server/rest"
	"github.com/bobbydeveaux/fpmatch-service/internal/server/storage"
)

func main() {
	var configPath string
	var auditPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to the YAML configuration file")
	flag.StringVar(&auditPath, "audit-log", "", "path to the tamper-evident audit log (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("fpmatch server starting",
		slog.String("http_addr", cfg.HTTPAddr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── storage backend ───────────────────────────────────────────────────────
	var store rest.Store
	switch {
	case cfg.DSN != "":
		pgStore, err := storage.New(ctx, cfg.DSN)
		if err != nil {
			logger.Error("failed to open PostgreSQL storage", slog.Any("error", err))
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
		logger.Info("PostgreSQL storage connected")
	case cfg.DevSQLitePath != "":
		devStore, err := storage.NewDevStore(cfg.DevSQLitePath)
		if err != nil {
			logger.Error("failed to open sqlite dev storage", slog.Any("error", err))
			os.Exit(1)
		}
		defer devStore.Close()
		store = devStore
		logger.Warn("running against sqlite dev store, not for production use", slog.String("path", cfg.DevSQLitePath))
	default:
		logger.Error("neither dsn nor dev_sqlite_path configured")
		os.Exit(1)
	}

	// ── audit log ─────────────────────────────────────────────────────────────
	var auditLog *audit.Logger
	if auditPath != "" {
		auditLog, err = audit.Open(auditPath)
		if err != nil {
			logger.Error("failed to open audit log", slog.Any("error", err))
			os.Exit(1)
		}
		defer auditLog.Close()
		logger.Info("audit log enabled", slog.String("path", auditPath))
	} else {
		logger.Warn("no audit log configured; enroll/verify/identify calls will not be recorded")
	}

	// ── REST API server ───────────────────────────────────────────────────────
	var pubKey *rsa.PublicKey
	if cfg.JWTPublicKeyPath != "" {
		keyPEM, err := os.ReadFile(cfg.JWTPublicKeyPath)
		if err != nil {
			logger.Error("failed to read JWT public key", slog.Any("error", err))
			os.Exit(1)
		}
		pubKey, err = rest.ParseRSAPublicKey(keyPEM)
		if err != nil {
			logger.Error("failed to parse JWT public key", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("JWT validation enabled")
	} else {
		logger.Warn("jwt_public_key_path not configured; REST API authentication disabled (dev mode)")
	}

	restSrv := rest.NewServer(store, logger, auditLog, cfg.MatchThresholdDefault)
	httpHandler := rest.NewRouter(restSrv, pubKey)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── start server ──────────────────────────────────────────────────────────
	httpErrCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP REST server listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			httpErrCh <- fmt.Errorf("HTTP server: %w", err)
		}
		close(httpErrCh)
	}()

	// ── wait for shutdown signal or fatal error ──────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-httpErrCh:
		if err != nil {
			logger.Error("HTTP server error", slog.Any("error", err))
		}
	}

	// ── graceful shutdown ─────────────────────────────────────────────────────
	logger.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", slog.Any("error", err))
	}

	logger.Info("fpmatch server exited cleanly")
}

// newLogger constructs a *slog.Logger that writes JSON-structured log
// records to stderr at the requested minimum level.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
