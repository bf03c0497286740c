// Command web runs the scan visualization API server: scan file
// uploads, batch progress over WebSocket, health, and metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matias199305/sick-sensors-visualization/internal/app"
)

func main() {
	configFile := flag.String("config", "config.yaml", "path to optional YAML config file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	application, err := app.NewApplication(configFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
