package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"whatsapp-boost/internal/api"
	"whatsapp-boost/internal/config"
	"whatsapp-boost/internal/deposit"
	"whatsapp-boost/internal/handler"
	"whatsapp-boost/internal/middleware"
	"whatsapp-boost/internal/repository"
	"whatsapp-boost/internal/router"
	"whatsapp-boost/internal/service"
	"whatsapp-boost/internal/session"
	"whatsapp-boost/pkg/logger"
)

func main() {
	// Create .env from .env.example if not exists
	if err := ensureEnvFile(); err != nil {
		log.Printf("Warning: Failed to create .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Starting WhatsApp boost bot", "backend", cfg.Backend.BaseURL)

	// Initialize session storage
	sessionRepo, err := repository.NewSessionRepository(cfg.Session.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize session repository: %v", err)
	}
	defer sessionRepo.Close()

	// Backend gateway, sessions and deposits
	apiClient := api.NewClient(&cfg.Backend, appLogger)
	sessions := session.NewManager(sessionRepo, apiClient, cfg.Session.TTL, appLogger)
	deposits := deposit.NewFlow(apiClient, &cfg.Deposit, cfg.Backend.RequestTimeout, appLogger)

	// A rejected token ends the chat session while it is still current, which stops its polling
	deposits.OnUnauthorized(func(chat, token string) {
		sessions.TeardownToken(chat, token)
	})
	sessions.OnTeardown(func(chat string) {
		if n := deposits.CancelChat(chat); n > 0 {
			appLogger.WithChat(chat).Info("Stopped deposit polling on session end", "tasks", n)
		}
	})

	// Initialize WhatsApp service
	whatsappService, err := service.NewWhatsAppService(&cfg.WhatsApp, &cfg.RateLimit, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize WhatsApp service", "error", err)
		log.Fatalf("Failed to initialize WhatsApp service: %v", err)
	}

	catalog := service.NewCatalogService(apiClient, cfg.Catalog.CacheTTL)
	bot := service.NewBot(whatsappService, apiClient, sessions, deposits, catalog, appLogger)
	sessions.OnTeardown(bot.ForgetChat)
	whatsappService.SetMessageHandler(bot)

	// Connect to WhatsApp
	if err := whatsappService.Connect(); err != nil {
		appLogger.Error("Failed to connect to WhatsApp", "error", err)
		log.Fatalf("Failed to connect to WhatsApp: %v\nPlease scan QR code first", err)
	}
	defer whatsappService.Disconnect()

	// Periodic jobs
	scheduler := service.NewScheduler(appLogger)
	if err := scheduler.ScheduleSessionCleanup(cfg.Session.CleanupCron, sessionRepo); err != nil {
		log.Fatalf("Failed to schedule session cleanup: %v", err)
	}
	if cfg.Lottery.AnnounceCron != "" {
		if err := scheduler.ScheduleLotteryAnnouncement(cfg.Lottery.AnnounceCron, cfg.Lottery.AnnounceGroupJID, apiClient, whatsappService); err != nil {
			log.Fatalf("Failed to schedule lottery announcements: %v", err)
		}
	}
	scheduler.Start()

	// Initialize handlers
	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(whatsappService, sessionRepo, deposits.Registry(), cfg, appLogger),
		Deposits: handler.NewDepositsHandler(deposits.Registry(), appLogger),
		Groups:   handler.NewGroupsHandler(whatsappService, appLogger),
		Webhook:  handler.NewWebhookHandler(bot, cfg.WhatsApp.AllowedJIDs, appLogger),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.Security.APIKey, appLogger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.SetupRoutes(handlers, authMiddleware, appLogger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("HTTP server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server error", "error", err)
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	appLogger.Info("WhatsApp boost bot started successfully",
		"address", addr,
		"whatsapp_connected", whatsappService.IsConnected(),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	scheduler.Stop()
	deposits.Shutdown()

	appLogger.Info("Server stopped gracefully")
}

// ensureEnvFile creates .env from .env.example if .env doesn't exist
func ensureEnvFile() error {
	// Check if .env already exists
	if _, err := os.Stat(".env"); err == nil {
		return nil
	}

	// Check if .env.example exists
	if _, err := os.Stat(".env.example"); os.IsNotExist(err) {
		return fmt.Errorf(".env.example not found")
	}

	// Copy .env.example to .env
	source, err := os.Open(".env.example")
	if err != nil {
		return fmt.Errorf("failed to open .env.example: %w", err)
	}
	defer source.Close()

	destination, err := os.Create(".env")
	if err != nil {
		return fmt.Errorf("failed to create .env: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return fmt.Errorf("failed to copy .env.example to .env: %w", err)
	}

	log.Println("Created .env file from .env.example")
	return nil
}
