package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	onerm "github.com/claude/onerm"
	"github.com/claude/onerm/internal/config"
	"github.com/claude/onerm/internal/mcp"
	"github.com/claude/onerm/internal/render"
	"github.com/claude/onerm/internal/server"
	"github.com/claude/onerm/internal/share"
	"github.com/claude/onerm/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("onerm starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *migrateOnly {
		if cfg.Storage.Driver != config.DriverPostgres {
			log.Info("migrate-only: nothing to migrate", "driver", cfg.Storage.Driver)
			return
		}
		if err := storage.RunMigrations(cfg.Storage.Postgres.DSN(), cfg.Storage.Migrations); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrate-only: exiting")
		return
	}

	ctx := context.Background()
	kv, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	var base *url.URL
	if cfg.Server.BaseURL != "" {
		base, err = url.Parse(cfg.Server.BaseURL)
		if err != nil {
			log.Error("invalid base_url", "error", err)
			os.Exit(1)
		}
	}

	// Create server
	srv := server.New(kv, server.Options{
		BaseURL:       base,
		DefaultLocale: cfg.Site.Locale(),
		Links: render.Links{
			GitHub:   cfg.Site.GitHub,
			Email:    cfg.Site.Email,
			Feedback: cfg.Site.Feedback,
		},
		Cards:       share.CardOptions{FontPath: cfg.Share.FontPath},
		ShareLimit:  cfg.Share.Limit(),
		ShareBurst:  cfg.Share.Burst,
		SessionIdle: cfg.Server.SessionIdle,
		MaxSessions: cfg.Server.MaxSessions,
	}, log)

	// Serve embedded static assets
	static, err := fs.Sub(onerm.WebFS, "web/static")
	if err != nil {
		log.Error("failed to load embedded assets", "error", err)
		os.Exit(1)
	}
	srv.SetStatic(static)

	// MCP over streamable HTTP, computed in process
	srv.MountMCP(mcpserver.NewStreamableHTTPServer(mcp.New(mcp.Local{}, base, Version, log)))

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "storage", cfg.Storage.Driver)
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// openStorage connects the configured session store. Postgres migrations
// run on every start; they are idempotent.
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.KV, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn("memory storage: sessions are lost on restart")
		return storage.NewMemory(), nil
	case config.DriverPostgres:
		dsn := cfg.Storage.Postgres.DSN()
		if err := storage.RunMigrations(dsn, cfg.Storage.Migrations); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		log.Info("migrations applied")
		db, err := storage.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		log.Info("database connected")
		return db, nil
	default:
		db, err := storage.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("sqlite opened", "path", cfg.Storage.SQLitePath)
		return db, nil
	}
}
