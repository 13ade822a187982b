package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/seo-tools/keyword-gap/pkg/runtime/terminal"
	"github.com/seo-tools/keyword-gap/pkg/services/config"
	"github.com/seo-tools/keyword-gap/pkg/services/gap"
	"github.com/seo-tools/keyword-gap/pkg/services/keywords/dataforseo"
	"github.com/seo-tools/keyword-gap/pkg/services/retry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("KEYWORDGAP_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The CLI talks to the provider directly; no cache or database between.
	fetcher := dataforseo.NewClient(dataforseo.Config{
		BaseURL:           cfg.Provider.BaseURL,
		Login:             cfg.Provider.Login,
		Password:          cfg.Provider.Password,
		RequestsPerSecond: cfg.Provider.RateLimit,
		Retry: retry.Policy{
			MaxAttempts:    cfg.Provider.MaxAttempts,
			InitialBackoff: cfg.Provider.RetryDelay,
		},
	})

	cli := terminal.NewCLI(terminal.Options{
		Fetcher:    fetcher,
		Classifier: gap.NewClassifier(cfg.Score),
		Output:     os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
