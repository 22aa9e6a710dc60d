package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Ledger store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendValkey   = "valkey"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Nutrients NutrientsConfig `yaml:"nutrients"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	LLM       LLMConfig       `yaml:"llm"`
	Recommend RecommendConfig `yaml:"recommend"`
	Trend     TrendConfig     `yaml:"trend"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// NutrientsConfig locates the reference table. S3 wins when configured.
type NutrientsConfig struct {
	Path string   `yaml:"path"`
	S3   S3Config `yaml:"s3"`
}

// S3Config points at an object in an S3-compatible bucket.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Key       string `yaml:"key"`
}

// LedgerConfig selects where saved meal records are persisted.
type LedgerConfig struct {
	Backend    string         `yaml:"backend"`
	SQLitePath string         `yaml:"sqlitePath"`
	Postgres   PostgresConfig `yaml:"postgres"`
	Valkey     ValkeyConfig   `yaml:"valkey"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for the list store.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// RecommendConfig controls the free-text passthrough.
type RecommendConfig struct {
	Prompt           string `yaml:"prompt"`
	VegetarianPrompt string `yaml:"vegetarianPrompt"`
	FoodInfoPrompt   string `yaml:"foodInfoPrompt"`
	MaxQueryTokens   int    `yaml:"maxQueryTokens"`
}

// TrendConfig controls dashboard windows and the day boundary.
type TrendConfig struct {
	WindowDays int    `yaml:"windowDays"`
	Timezone   string `yaml:"timezone"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("NUTRIENTS_PATH"); v != "" {
		cfg.Nutrients.Path = v
	}
	if v := os.Getenv("NUTRIENTS_S3_ENDPOINT"); v != "" {
		cfg.Nutrients.S3.Endpoint = v
	}
	if v := os.Getenv("NUTRIENTS_S3_ACCESS_KEY"); v != "" {
		cfg.Nutrients.S3.AccessKey = v
	}
	if v := os.Getenv("NUTRIENTS_S3_SECRET_KEY"); v != "" {
		cfg.Nutrients.S3.SecretKey = v
	}
	if v := os.Getenv("NUTRIENTS_S3_BUCKET"); v != "" {
		cfg.Nutrients.S3.Bucket = v
	}
	if v := os.Getenv("NUTRIENTS_S3_REGION"); v != "" {
		cfg.Nutrients.S3.Region = v
	}
	if v := os.Getenv("NUTRIENTS_S3_KEY"); v != "" {
		cfg.Nutrients.S3.Key = v
	}
	if v := os.Getenv("LEDGER_BACKEND"); v != "" {
		cfg.Ledger.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("LEDGER_SQLITE_PATH"); v != "" {
		cfg.Ledger.SQLitePath = v
	}
	if v := os.Getenv("LEDGER_POSTGRES_DSN"); v != "" {
		cfg.Ledger.Postgres.DSN = v
	}
	if v := os.Getenv("LEDGER_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Ledger.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("LEDGER_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Ledger.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("LEDGER_VALKEY_ADDR"); v != "" {
		cfg.Ledger.Valkey.Addr = v
	}
	if v := os.Getenv("LEDGER_VALKEY_PREFIX"); v != "" {
		cfg.Ledger.Valkey.Prefix = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("RECOMMEND_PROMPT"); v != "" {
		cfg.Recommend.Prompt = v
	}
	if v := os.Getenv("RECOMMEND_MAX_QUERY_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Recommend.MaxQueryTokens = parsed
		}
	}
	if v := os.Getenv("TREND_WINDOW_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Trend.WindowDays = parsed
		}
	}
	if v := os.Getenv("TREND_TIMEZONE"); v != "" {
		cfg.Trend.Timezone = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Default returns the built-in configuration that file and env values override.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORSOrigins:  []string{"http://localhost:5173"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/sessions",
					"/api/v1/sessions/*/meals",
					"/api/v1/recommendations",
					"/api/v1/vegetarian",
					"/api/v1/food-info",
				},
			},
		},
		Nutrients: NutrientsConfig{
			Path: "data/FDDB.csv",
		},
		Ledger: LedgerConfig{
			Backend:    BackendMemory,
			SQLitePath: "data/meals.db",
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			Valkey: ValkeyConfig{
				Prefix: "meals",
			},
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		Recommend: RecommendConfig{
			Prompt:           "You are a registered dietitian. Suggest balanced Korean meals for the user's request. Keep the answer short.",
			VegetarianPrompt: "Is %s a vegetarian food?",
			FoodInfoPrompt:   "For the vegan food %s, list its nutrients per 100g (calories, protein, carbohydrate, fat, iron), then suggest a recipe. Keep nutrients and recipe in separate sections.",
			MaxQueryTokens:   512,
		},
		Trend: TrendConfig{
			WindowDays: 7,
			Timezone:   "Asia/Seoul",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Nutrients.Path) == "" && strings.TrimSpace(c.Nutrients.S3.Key) == "" {
		return errors.New("nutrients.path or nutrients.s3.key must be set")
	}
	if c.Nutrients.S3.Key != "" && (c.Nutrients.S3.Endpoint == "" || c.Nutrients.S3.Bucket == "") {
		return errors.New("nutrients.s3.endpoint and nutrients.s3.bucket are required with nutrients.s3.key")
	}
	switch c.Ledger.Backend {
	case BackendMemory:
	case BackendSQLite:
		if strings.TrimSpace(c.Ledger.SQLitePath) == "" {
			return errors.New("ledger.sqlitePath cannot be empty for the sqlite backend")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Ledger.Postgres.DSN) == "" {
			return errors.New("ledger.postgres.dsn cannot be empty for the postgres backend")
		}
	case BackendValkey:
		if strings.TrimSpace(c.Ledger.Valkey.Addr) == "" {
			return errors.New("ledger.valkey.addr cannot be empty for the valkey backend")
		}
	default:
		return fmt.Errorf("ledger.backend %q is not one of memory, sqlite, postgres, valkey", c.Ledger.Backend)
	}
	if c.Recommend.MaxQueryTokens < 0 {
		return errors.New("recommend.maxQueryTokens cannot be negative")
	}
	if !strings.Contains(c.Recommend.VegetarianPrompt, "%s") {
		return errors.New("recommend.vegetarianPrompt must contain %s")
	}
	if !strings.Contains(c.Recommend.FoodInfoPrompt, "%s") {
		return errors.New("recommend.foodInfoPrompt must contain %s")
	}
	if c.Trend.WindowDays <= 0 {
		return errors.New("trend.windowDays must be positive")
	}
	if c.Trend.Timezone != "" {
		if _, err := time.LoadLocation(c.Trend.Timezone); err != nil {
			return fmt.Errorf("trend.timezone: %w", err)
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
