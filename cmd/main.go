package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"listing-writer/handler"
	"listing-writer/internal/config"
	"listing-writer/internal/generation"
	"listing-writer/internal/integrations/openrouter"
	"listing-writer/internal/integrations/paramstore"
	"listing-writer/internal/repository"
	"listing-writer/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg := config.Load()
	if cfg.Storage.ProductsTable == "" {
		slog.Error("required environment variable is not set", "key", "PRODUCTS_TABLE")
		os.Exit(1)
	}

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Credential (resolved once per process) ----
	var tokens tokenFetcher
	if cfg.OpenRouter.APIKey == "" && cfg.OpenRouter.ParamPrefix != "" {
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		tokens = ssmClient
	}
	apiKey := resolveAPIKey(ctx, cfg.OpenRouter.APIKey, cfg.OpenRouter.TokenParameter(), tokens)

	// ---- Clients ----
	orClient, err := openrouter.NewClient(apiKey, cfg.OpenRouter.Model,
		openrouter.WithBaseURL(cfg.OpenRouter.BaseURL),
		openrouter.WithHTTPClient(&http.Client{Timeout: cfg.OpenRouter.HTTPTimeout}),
		openrouter.WithAttribution(cfg.OpenRouter.AppURL, cfg.OpenRouter.AppTitle),
	)
	if err != nil {
		slog.Error("failed to create OpenRouter client", "err", err)
		os.Exit(1)
	}

	store, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.Storage.ProductsTable, cfg.Storage.HistoryLimit)
	if err != nil {
		slog.Error("failed to create history store", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
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

	lambda.Start(h.Handle)
}

type tokenFetcher interface {
	GetToken(ctx context.Context, name string) (string, error)
}

// resolveAPIKey prefers the environment key and falls back to SSM. Any
// failure leaves the key empty so requests fail as unconfigured instead of
// the function failing to start.
func resolveAPIKey(ctx context.Context, envKey, parameter string, tokens tokenFetcher) string {
	if envKey != "" {
		return envKey
	}
	if tokens != nil {
		key, err := tokens.GetToken(ctx, parameter)
		if err == nil {
			return key
		}
		slog.Warn("failed to load OpenRouter key from SSM", "err", err, "parameter", parameter)
	}
	slog.Warn("OPENROUTER_API_KEY is missing; description generation will fail until it is configured")
	return ""
}
