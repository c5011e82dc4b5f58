// Package config reads process settings from the environment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"listing-writer/internal/integrations/openrouter"
	"listing-writer/internal/repository"
)

type Config struct {
	OpenRouter OpenRouterConfig
	Generation GenerationConfig
	Storage    StorageConfig
	Server     ServerConfig
}

type OpenRouterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	AppURL      string
	AppTitle    string
	HTTPTimeout time.Duration
	// ParamPrefix, when set, points at an SSM prefix holding the API key.
	ParamPrefix string
}

type GenerationConfig struct {
	MaxOutputTokens int
	Timeout         time.Duration
}

type StorageConfig struct {
	ProductsTable string
	DataFile      string
	HistoryLimit  int
}

type ServerConfig struct {
	Port int
}

// TokenParameter is the SSM parameter holding the OpenRouter key.
func (c OpenRouterConfig) TokenParameter() string {
	return strings.TrimRight(c.ParamPrefix, "/") + "/openrouter-token"
}

// Load reads the environment. Unset or malformed numeric values fall back to
// their defaults.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("OPENROUTER_BASE_URL", openrouter.DefaultBaseURL)
	v.SetDefault("OPENROUTER_MODEL", openrouter.DefaultModel)
	v.SetDefault("APP_URL", "https://github.com/example/etsy-description-writer")
	v.SetDefault("APP_TITLE", "Etsy Description Writer")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 90)
	v.SetDefault("MAX_OUTPUT_TOKENS", 0)
	v.SetDefault("GENERATION_TIMEOUT_SECONDS", 0)
	v.SetDefault("HISTORY_LIMIT", repository.DefaultHistoryLimit)
	v.SetDefault("DATA_FILE", "data/products.json")
	v.SetDefault("API_PORT", 4000)

	return Config{
		OpenRouter: OpenRouterConfig{
			APIKey:      strings.TrimSpace(v.GetString("OPENROUTER_API_KEY")),
			BaseURL:     strings.TrimSpace(v.GetString("OPENROUTER_BASE_URL")),
			Model:       strings.TrimSpace(v.GetString("OPENROUTER_MODEL")),
			AppURL:      v.GetString("APP_URL"),
			AppTitle:    v.GetString("APP_TITLE"),
			HTTPTimeout: seconds(v, "HTTP_TIMEOUT_SECONDS"),
			ParamPrefix: strings.TrimSpace(v.GetString("PARAM_PREFIX")),
		},
		Generation: GenerationConfig{
			MaxOutputTokens: nonNegative(v, "MAX_OUTPUT_TOKENS"),
			Timeout:         seconds(v, "GENERATION_TIMEOUT_SECONDS"),
		},
		Storage: StorageConfig{
			ProductsTable: strings.TrimSpace(v.GetString("PRODUCTS_TABLE")),
			DataFile:      strings.TrimSpace(v.GetString("DATA_FILE")),
			HistoryLimit:  positive(v, "HISTORY_LIMIT", repository.DefaultHistoryLimit),
		},
		Server: ServerConfig{
			Port: positive(v, "API_PORT", 4000),
		},
	}
}

func seconds(v *viper.Viper, key string) time.Duration {
	return time.Duration(nonNegative(v, key)) * time.Second
}

func nonNegative(v *viper.Viper, key string) int {
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return 0
}

func positive(v *viper.Viper, key string, def int) int {
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return def
}
