// cmd/hr-tool-server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hr-assistant/internal/common/config"
	"hr-assistant/internal/common/database"
	"hr-assistant/internal/common/logger"
	"hr-assistant/internal/toolserver"
	qus "hr-assistant/internal/workers/data-access/query-user-store"
	"hr-assistant/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres init failed", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.EnsureUsersTable(ctx, cfg.Database.Postgres.UsersTable); err != nil {
		zapLog.Fatal("failed to prepare users table", zap.Error(err))
	}
	store, err := qus.NewStore(pg.DB, cfg.Database.Postgres.UsersTable)
	if err != nil {
		zapLog.Fatal("invalid users table", zap.Error(err))
	}

	catalog, err := registry.LoadOrDefault(cfg.Tools.RegistryPath)
	if err != nil {
		zapLog.Fatal("failed to load tool catalog", zap.Error(err))
	}

	srv, err := toolserver.New(store, catalog, toolserver.Defaults{
		LeaveBalance: cfg.Assistant.DefaultLeaveBalance,
		TotalLeaves:  cfg.Assistant.DefaultTotalLeaves,
	}, cfg.App.Version, log)
	if err != nil {
		zapLog.Fatal("failed to build tool server", zap.Error(err))
	}

	mcpHandler, err := srv.Handler(cfg.MCP.Transport)
	if err != nil {
		zapLog.Fatal("invalid MCP transport", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	httpSrv := &http.Server{
		Addr:              cfg.MCP.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("HR tool server listening",
			zap.String("address", cfg.MCP.ListenAddress),
			zap.String("transport", cfg.MCP.Transport),
			zap.Strings("tools", catalog.Names()),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("tool server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping tool server", zap.Error(err))
	}
	zapLog.Info("HR tool server stopped")
}
