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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/pauljones0/agriconnect/internal/ai"
	"github.com/pauljones0/agriconnect/internal/app"
	"github.com/pauljones0/agriconnect/internal/config"
	"github.com/pauljones0/agriconnect/internal/gateway"
	"github.com/pauljones0/agriconnect/internal/identity"
	"github.com/pauljones0/agriconnect/internal/storage"
	"github.com/pauljones0/agriconnect/internal/storage/memstore"
	"github.com/pauljones0/agriconnect/internal/validator"
)

func main() {
	slog.Info("Starting AgriConnect server...")
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, provider, err := openBackend(ctx, cfg)
	if err != nil {
		slog.Error("Critical error initializing store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	deps := app.Deps{
		Store:     store,
		Identity:  provider,
		Validator: validator.New(),
		Assistant: ai.NewAssistant(cfg.AssistantAPIURL),
		Config:    cfg,
	}
	gen, err := ai.NewQuizGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, nil)
	if err != nil {
		slog.Warn("Quiz generation unavailable", "error", err)
	} else if gen != nil {
		deps.Quiz = gen
	}

	gw := gateway.NewServer(func(ctx context.Context, emit func(app.Event)) *app.App {
		return app.New(ctx, deps, emit)
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", gw)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","clients":%d}`+"\n", gw.Clients())
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Listening on port", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Hijacked WebSocket connections are not tracked by the HTTP server.
		if err := gw.Shutdown(shutdownCtx); err != nil {
			slog.Error("WebSocket shutdown error", "error", err)
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

// openBackend picks the managed Firestore and Firebase backends or the
// in-memory pair used for local runs.
func openBackend(ctx context.Context, cfg *config.Config) (app.Store, identity.Provider, error) {
	if cfg.StoreBackend == config.BackendMemory {
		return memstore.New(), identity.NewLocal(0), nil
	}

	store, err := storage.New(ctx, cfg.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	provider, err := identity.NewFirebase(ctx, cfg.FirebaseAPIKey)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("identity provider: %w", err)
	}
	return store, provider, nil
}
