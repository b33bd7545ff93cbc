package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"talksy/auth"
	"talksy/httpapi"
	"talksy/live"
	"talksy/moderation"
	"talksy/observability"
	"talksy/repositories"
	"talksy/search"
	"talksy/services"
	"talksy/storage"
	"talksy/workers"
	"talksy/ws"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// main stays a thin wrapper: run() owns the lifecycle so every defer
	// fires before the process exits.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage (BadgerDB + Bluge + media directory)
	db, err := badger.Open(buildBadgerOpts(ctx, config, logger))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	media, err := storage.NewMediaStore(config.MediaRoot, logger)
	if err != nil {
		return exitRuntime, err
	}

	moderator, err := buildModerator(config, logger)
	if err != nil {
		return exitConfig, err
	}

	// 3. Live layer
	stats := observability.NewStats()
	registry := live.NewRegistry()
	router := live.NewRouter(logger, registry, stats)
	presence := live.NewPresence(logger, registry, stats)
	lifecycle := live.NewLifecycle(logger, registry, presence)

	// 4. Repositories & services
	tokens := auth.NewTokens([]byte(config.JWTSecret), config.AuthTokenDuration)
	userRepository := repositories.NewUserRepository(db)
	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	groupRepository := repositories.NewGroupRepository(db)
	index := search.NewIndex(blugeWriter, config.searchLimit(), logger)

	authService := services.NewAuthService(userRepository, media, tokens, logger)
	chatService := services.NewChatService(messageRepository, groupRepository, media, moderator, index, router, logger)
	groupService := services.NewGroupService(groupRepository, userRepository, messageRepository, media, router, logger)

	// 5. HTTP server
	server := &httpapi.Server{
		AuthHandler:    httpapi.NewAuthHandler(authService, logger),
		MessageHandler: httpapi.NewMessageHandler(chatService, logger),
		GroupHandler:   httpapi.NewGroupHandler(groupService, chatService, logger),
		SocketHandler:  ws.NewHandler(logger, lifecycle, presence, router, tokens, stats),
		Tokens:         tokens,
		Registry:       registry,
		Stats:          stats,
		Media:          media,
		Log:            logger,
	}

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 6. Context & signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	// 7. Background workers under supervision
	sup := workers.NewSupervisor(logger)
	sup.Add(
		workers.NewMonitorWorker(logger, stats, registry),
		workers.NewBadgerGCWorker(logger, db),
	)
	go sup.Run(ctx)

	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for stop or error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 9. Graceful shutdown: stop accepting requests, then stop workers.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.shutdownTimeout())
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(ctx context.Context, config Config, logger *slog.Logger) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// buildModerator falls back to a tiny built-in list when no word file is
// configured, so moderation is never silently disabled.
func buildModerator(config Config, logger *slog.Logger) (*moderation.Moderator, error) {
	words := []string{"fuck", "shit", "bitch", "asshole"}
	if config.ForbiddenWordsPath != "" {
		loaded, err := moderation.LoadWords(config.ForbiddenWordsPath)
		if err != nil {
			return nil, fmt.Errorf("forbidden words file: %w", err)
		}
		words = loaded
		logger.Info("Loaded forbidden words", "count", len(words))
	}
	return moderation.NewModerator(words)
}
