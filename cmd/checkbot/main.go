package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/k2wGG/Check-bot/internal/checker"
	"github.com/k2wGG/Check-bot/internal/config"
	"github.com/k2wGG/Check-bot/internal/console"
	"github.com/k2wGG/Check-bot/internal/httpapi"
	"github.com/k2wGG/Check-bot/internal/logbus"
	"github.com/k2wGG/Check-bot/internal/notify"
	"github.com/k2wGG/Check-bot/internal/provider/securitylabs"
	"github.com/k2wGG/Check-bot/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if _, err := os.Stat(cfg.Accounts.Path); err != nil {
		log.Fatalf("accounts file: %v", err)
	}

	bus := logbus.New(200)
	printer := console.NewPrinter(os.Stdout)
	stopPrinter := printer.Attach(bus)
	defer stopPrinter()

	ctx := context.Background()
	store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	prov := securitylabs.New(cfg.Provider, bus)
	notifier := notify.NewEmailNotifier(cfg.Notify.Email, bus)
	runner := checker.New(checker.Options{
		Config:   cfg,
		Provider: prov,
		Bus:      bus,
		Store:    store,
		Printer:  printer,
		Notifier: notifier,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var server *http.Server
	serverErr := make(chan error, 1)
	if cfg.Server.Addr != "" {
		api := httpapi.New(httpapi.Options{Cfg: cfg, Bus: bus, Store: store})
		server = &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			serverErr <- server.ListenAndServe()
		}()
		bus.Info("status server listening", map[string]any{"addr": cfg.Server.Addr})
	}

	runnerDone := make(chan error, 1)
	go func() {
		runnerDone <- runner.Run(runCtx)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		bus.Info("shutdown signal received", map[string]any{"signal": sig.String()})
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			bus.Error("status server error", map[string]any{"error": err.Error()})
		}
	case err := <-runnerDone:
		if err != nil && err != context.Canceled {
			bus.Error("runner stopped", map[string]any{"error": err.Error()})
		}
	}

	cancel()
	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}
	bus.Info("stopped", nil)
}
