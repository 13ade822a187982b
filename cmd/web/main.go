package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seo-tools/keyword-gap/pkg/metrics"
	"github.com/seo-tools/keyword-gap/pkg/server"
	"github.com/seo-tools/keyword-gap/pkg/services/config"
	"github.com/seo-tools/keyword-gap/pkg/services/gap"
	"github.com/seo-tools/keyword-gap/pkg/services/keywords"
	"github.com/seo-tools/keyword-gap/pkg/services/keywords/dataforseo"
	"github.com/seo-tools/keyword-gap/pkg/services/report"
	"github.com/seo-tools/keyword-gap/pkg/services/retry"
	"github.com/seo-tools/keyword-gap/pkg/store/cache"
	"github.com/seo-tools/keyword-gap/pkg/store/postgres"
	reportstore "github.com/seo-tools/keyword-gap/pkg/store/postgres/report"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the keyword gap analysis server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the config file (environment variables apply when omitted)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := postgres.NewDB(ctx, postgres.Settings{URL: cfg.Database.URL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(cfg.Database.URL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info().Msg("database migrations applied")

	store, err := reportstore.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	keywordCache, err := cache.NewRedis(redisClient)
	if err != nil {
		return fmt.Errorf("failed to create keyword cache: %w", err)
	}

	provider := dataforseo.NewClient(dataforseo.Config{
		BaseURL:           cfg.Provider.BaseURL,
		Login:             cfg.Provider.Login,
		Password:          cfg.Provider.Password,
		RequestsPerSecond: cfg.Provider.RateLimit,
		Retry: retry.Policy{
			MaxAttempts:    cfg.Provider.MaxAttempts,
			InitialBackoff: cfg.Provider.RetryDelay,
		},
	})
	fetcher := keywords.NewCached(provider, keywordCache)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	reports := report.NewController(
		store,
		fetcher,
		gap.NewClassifier(cfg.Score),
		metrics.New(registry),
		report.Config{RunTimeout: cfg.RunTimeout},
	)

	api := server.NewWebAPI(server.Config{
		Addr:            net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Reports:  reports,
			Registry: registry,
			Logger:   logger,
		},
	})

	return api.Start()
}
