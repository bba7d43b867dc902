package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felo/chatfiles/internal/config"
	"github.com/felo/chatfiles/internal/db"
	"github.com/felo/chatfiles/internal/handlers"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chatfiles HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.FromCommand(cmd)
		if err != nil {
			return err
		}
		return runServer(cfg)
	},
}

func init() {
	config.RegisterFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServer(cfg *config.Config) error {
	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	log.Printf("Database opened at: %s", cfg.DBPath)

	h := handlers.New(database, cfg)

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Create shutdown signal channel
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.URL())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}
