// Command devserver runs the description API over plain HTTP with a
// file-backed history, for local development.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"listing-writer/handler"
	"listing-writer/internal/config"
	"listing-writer/internal/generation"
	"listing-writer/internal/integrations/openrouter"
	"listing-writer/internal/repository"
	"listing-writer/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "err", err)
	}

	cfg := config.Load()
	if cfg.OpenRouter.APIKey == "" {
		slog.Warn("OPENROUTER_API_KEY is missing. Add it to your .env file to enable description generation.")
	}

	orClient, err := openrouter.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model,
		openrouter.WithBaseURL(cfg.OpenRouter.BaseURL),
		openrouter.WithHTTPClient(&http.Client{Timeout: cfg.OpenRouter.HTTPTimeout}),
		openrouter.WithAttribution(cfg.OpenRouter.AppURL, cfg.OpenRouter.AppTitle),
	)
	if err != nil {
		slog.Error("failed to create OpenRouter client", "err", err)
		os.Exit(1)
	}

	store, err := repository.NewFileStore(cfg.Storage.DataFile, cfg.Storage.HistoryLimit)
	if err != nil {
		slog.Error("failed to create history store", "err", err)
		os.Exit(1)
	}

	generator, err := generation.NewGenerator(orClient, generation.WithMaxTokens(cfg.Generation.MaxOutputTokens))
	if err != nil {
		slog.Error("failed to create generator", "err", err)
		os.Exit(1)
	}

	svc, err := usecase.NewDescriptionService(generator, store, orClient.Model(), cfg.Generation.Timeout)
	if err != nil {
		slog.Error("failed to create description service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(svc)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("API listening", "url", "http://localhost"+addr, "data_file", cfg.Storage.DataFile)
	if err := handler.NewRouter(h).Run(addr); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
