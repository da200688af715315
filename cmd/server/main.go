package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibin/wikisearch-bot/config"
	httpHandler "github.com/vibin/wikisearch-bot/internal/adapters/primary/http"
	"github.com/vibin/wikisearch-bot/internal/adapters/primary/whatsapp"
	"github.com/vibin/wikisearch-bot/internal/adapters/secondary/database"
	"github.com/vibin/wikisearch-bot/internal/adapters/secondary/wiki"
	"github.com/vibin/wikisearch-bot/internal/core/ports"
	"github.com/vibin/wikisearch-bot/internal/core/services"
	"github.com/vibin/wikisearch-bot/internal/logger"
	"github.com/vibin/wikisearch-bot/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debugMode {
		logLevel = slog.LevelDebug
	}
	log := logger.New(logLevel, os.Stdout)
	log.Info("Starting wiki search bot")

	// Load configuration, writing a default file on first run so the
	// operator has something to edit
	path := *configPath
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadConfig(path)
	switch {
	case os.IsNotExist(err):
		log.Info("No config file found, writing defaults", "path", path)
		cfg = config.DefaultConfig()
		if err := config.SaveConfig(cfg, path); err != nil {
			log.Error("Failed to write default configuration", "error", err)
			os.Exit(1)
		}
	case err != nil:
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	default:
		log.Info("Loaded configuration", "path", path)
	}

	metrics.Register()

	// Open the endpoint store
	endpointDB, err := database.NewEndpointDatabase(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open endpoint database", "error", err)
		os.Exit(1)
	}
	defer endpointDB.Close()

	// Wire the search pipeline
	resolver := services.NewEndpointResolver(endpointDB, cfg.Search.GlobalDefaultEndpoint, log)
	fetcher := wiki.NewClient(time.Duration(cfg.Search.TimeoutSeconds)*time.Second, log)
	searchService := services.NewSearchService(resolver, fetcher, &cfg.Search, log)
	assembler := services.NewAssembler(searchService, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the WhatsApp transport
	var chatAdapter ports.ChatPort
	if cfg.WhatsApp.Enabled {
		wa, err := whatsapp.NewWhatsAppAdapter(resolver, assembler, endpointDB, cfg, log)
		if err != nil {
			log.Error("Failed to initialize WhatsApp adapter", "error", err)
			os.Exit(1)
		}
		chatAdapter = wa

		go func() {
			if err := wa.Start(ctx); err != nil {
				log.Error("WhatsApp adapter stopped", "error", err)
			}
		}()
	} else {
		log.Warn("WhatsApp integration is disabled, only the admin API is available")
	}

	// Create HTTP admin server
	handler := httpHandler.NewHandler(resolver, endpointDB, chatAdapter, cfg, log)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("Shutting down...")

	cancel()
	if chatAdapter != nil {
		if err := chatAdapter.Disconnect(); err != nil {
			log.Error("Failed to disconnect WhatsApp", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
