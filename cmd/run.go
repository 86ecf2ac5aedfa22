package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"raffler/config"
	"raffler/database"
	"raffler/draw"
	"raffler/events"
	"raffler/handlers"
	"raffler/repository"
	"raffler/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting raffler...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	gate := service.NewOperatorGate(cfg.OperatorAddress)
	guard := service.NewReentryGuard()
	picker := draw.NewPicker(draw.NewLedgerHeadSource(db))
	raffleService := service.NewRaffleService(uowFactory, gate, guard, picker, cfg)
	treasuryService := service.NewTreasuryService(uowFactory, gate, guard, cfg)
	custodyService := service.NewCustodyService(uowFactory)
	log.Println("Services initialized successfully")

	// Initialize HTTP server
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	handlers.NewHTTPHandler(raffleService, treasuryService, custodyService, gate).RegisterRoutes(router)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s in %s mode...", cfg.HTTPAddr, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		db.Close()
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
