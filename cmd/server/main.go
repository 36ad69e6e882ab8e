package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tzuhanw/gearbot/internal/config"
	"github.com/tzuhanw/gearbot/internal/middleware"
	"github.com/tzuhanw/gearbot/internal/service"
	"github.com/tzuhanw/gearbot/internal/storage"
	"github.com/tzuhanw/gearbot/internal/storage/csvfile"
	"github.com/tzuhanw/gearbot/internal/storage/sqlite"
	"github.com/tzuhanw/gearbot/internal/webhook"
	"github.com/tzuhanw/gearbot/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err, "backend", cfg.StoreBackend)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "backend", cfg.StoreBackend)

	bot, err := linebot.New(cfg.ChannelSecret, cfg.ChannelToken)
	if err != nil {
		slog.Error("Failed to create LINE client", "error", err)
		os.Exit(1)
	}

	ledger := service.NewLedgerService(store)

	mux := http.NewServeMux()
	mux.Handle("/callback", webhook.New(bot, ledger, cfg.AllowedGroups))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})

	loggedHandler := middleware.Logging(mux)

	// h2c lets proxies that speak HTTP/2 without TLS reach us directly.
	h2cHandler := h2c.NewHandler(loggedHandler, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Webhook server starting", "address", addr, "allowed_groups", len(cfg.AllowedGroups))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// openStore selects the ledger store backend from configuration.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreBackend {
	case "csv":
		return csvfile.New(cfg.CSVDir)
	case "sqlite":
		return sqlite.New(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
