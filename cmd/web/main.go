package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/de-tools/billing-atlas/pkg/server"
	"github.com/de-tools/billing-atlas/pkg/services/analytics"
	"github.com/de-tools/billing-atlas/pkg/services/config"
	"github.com/de-tools/billing-atlas/pkg/services/ingest"
	"github.com/de-tools/billing-atlas/pkg/store/dataset"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Billing Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a billing-codes config file (defaults to the built-in taxonomy)")

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

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	logger.Info().
		Str("anchor", cfg.Codes.Anchor).
		Strs("assessment", cfg.Codes.Assessment).
		Strs("recurring", cfg.Codes.Recurring).
		Msg("billing-code taxonomy loaded")

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:            net.JoinHostPort(host, port),
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Analytics: analytics.NewController(cfg),
			Datasets:  dataset.NewStore(),
			Fetcher:   ingest.NewFetcher(nil),
		},
	})

	return api.Start()
}
