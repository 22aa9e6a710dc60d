package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
	"github.com/yanqian/nutrient-tracker/internal/domain/nutrient"
	"github.com/yanqian/nutrient-tracker/internal/domain/recommend"
	"github.com/yanqian/nutrient-tracker/internal/domain/tracker"
	"github.com/yanqian/nutrient-tracker/internal/infra/config"
	"github.com/yanqian/nutrient-tracker/internal/infra/llm/chatgpt"
	"github.com/yanqian/nutrient-tracker/internal/infra/mealstore"
	"github.com/yanqian/nutrient-tracker/internal/infra/nutrienttable"
	"github.com/yanqian/nutrient-tracker/pkg/util"
)

func provideRecommendConfig(cfg *config.Config) recommend.Config {
	return recommend.Config{
		Prompt:           cfg.Recommend.Prompt,
		VegetarianPrompt: cfg.Recommend.VegetarianPrompt,
		FoodInfoPrompt:   cfg.Recommend.FoodInfoPrompt,
		MaxQueryTokens:   cfg.Recommend.MaxQueryTokens,
		Model:            cfg.LLM.Model,
		Temperature:      cfg.LLM.Temperature,
	}
}

func provideTrackerConfig(cfg *config.Config) tracker.Config {
	return tracker.Config{
		WindowDays: cfg.Trend.WindowDays,
		Location:   util.LoadLocation(cfg.Trend.Timezone),
	}
}

// provideChatClient degrades to a client that always fails when no API key
// is configured, so the rest of the service still starts.
func provideChatClient(cfg *config.Config, logger *slog.Logger) recommend.ChatClient {
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		logger.Warn("chat client disabled", "error", err)
		return chatgpt.Disabled{}
	}
	return client
}

// provideNutrientTable loads the reference table. Failure aborts startup.
func provideNutrientTable(cfg *config.Config, logger *slog.Logger) (*nutrient.Table, error) {
	var src nutrienttable.Source = nutrienttable.FileSource{Path: cfg.Nutrients.Path}
	s3cfg := nutrienttable.S3Config(cfg.Nutrients.S3)
	if s3cfg.Enabled() {
		s3src, err := nutrienttable.NewS3Source(s3cfg, logger)
		if err != nil {
			return nil, err
		}
		src = s3src
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	table, err := nutrienttable.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	logger.Info("nutrient table loaded", "source", src.Name(), "foods", table.Len())
	return table, nil
}

func provideMealStore(cfg *config.Config, logger *slog.Logger) mealstore.Store {
	switch cfg.Ledger.Backend {
	case config.BackendSQLite:
		store, err := mealstore.NewSQLiteStore(cfg.Ledger.SQLitePath)
		if err != nil {
			logger.Error("failed to open sqlite meal store, using memory store", "error", err)
			return mealstore.NewMemoryStore()
		}
		logger.Info("sqlite meal store enabled", "path", cfg.Ledger.SQLitePath)
		return store
	case config.BackendPostgres:
		return providePostgresMealStore(cfg, logger)
	case config.BackendValkey:
		return provideValkeyMealStore(cfg, logger)
	default:
		logger.Info("meal records kept in memory")
		return mealstore.NewMemoryStore()
	}
}

func providePostgresMealStore(cfg *config.Config, logger *slog.Logger) mealstore.Store {
	fallback := mealstore.NewMemoryStore()
	dsn := strings.TrimSpace(cfg.Ledger.Postgres.DSN)
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory store", "error", err)
		return fallback
	}
	if cfg.Ledger.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Ledger.Postgres.MaxConns
	}
	if cfg.Ledger.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Ledger.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory store", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory store", "error", err)
		pool.Close()
		return fallback
	}
	store := mealstore.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, using memory store", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres meal store enabled")
	return store
}

func provideValkeyMealStore(cfg *config.Config, logger *slog.Logger) mealstore.Store {
	opt, err := buildValkeyOptions(cfg.Ledger.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return mealstore.NewMemoryStore()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return mealstore.NewMemoryStore()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return mealstore.NewMemoryStore()
	}
	logger.Info("valkey meal store enabled", "addr", cfg.Ledger.Valkey.Addr)
	return mealstore.NewValkeyStore(client, cfg.Ledger.Valkey.Prefix)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideLedgerStore(store mealstore.Store) ledger.Store {
	return store
}

func provideStoreCloser(store mealstore.Store) io.Closer {
	return store
}
