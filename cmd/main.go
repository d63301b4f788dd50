package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/rs/cors"

	"room-lab/httpapi"
	"room-lab/moderation"
	"room-lab/repositories"
	"room-lab/search"
	"room-lab/services"
	"room-lab/workers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanups always execute.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB) & search index
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := search.Open(config.SearchFilepath)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		_ = index.Close()
	}()

	// 3. Repositories & service pipeline
	participants := repositories.NewParticipantRepository(db)
	messages, err := repositories.NewMessageRepository(db)
	if err != nil {
		return fmt.Errorf("message repository failed: %w", err)
	}
	defer func() {
		_ = messages.Close()
	}()

	masker, err := buildMasker(config)
	if err != nil {
		return err
	}
	service := services.NewRoomService(participants, messages, index, masker, log)

	// 4. Context & signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers under supervision
	sup := workers.NewSupervisor(log).
		Add(workers.NewPresenceSweeper(participants, messages, index, log, config.SweepInterval, config.IdleTimeout)).
		Add(workers.NewHealthMonitor(log, config.HealthInterval))
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. HTTP server
	handler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(config.AllowedOrigins, ","),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "User"},
	}).Handler(httpapi.NewServer(service, log).Router())

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{
		Addr:         address,
		Handler:      handler,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to stop", "error", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}

func buildMasker(config Config) (*moderation.Masker, error) {
	if config.CensoredWords == nil {
		return nil, nil
	}
	words, err := moderation.LoadWords(*config.CensoredWords)
	if err != nil {
		return nil, fmt.Errorf("loading censored words failed: %w", err)
	}
	runes := []rune(config.CensoredChar)
	if len(runes) != 1 {
		return nil, fmt.Errorf("CENSORED_CHARACTER must be a single character, got %q", config.CensoredChar)
	}
	return moderation.NewMasker(words, runes[0])
}
