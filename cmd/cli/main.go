package main

import (
	"fmt"
	"os"

	"github.com/de-tools/billing-atlas/pkg/runtime/terminal"
	"github.com/de-tools/billing-atlas/pkg/services/analytics"
	"github.com/de-tools/billing-atlas/pkg/services/config"
)

func main() {
	cfg := config.Default()
	if path := os.Getenv("BILLING_ATLAS_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	cli := terminal.NewCLI(terminal.Options{
		Analytics: analytics.NewController(cfg),
		Output:    os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
