package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/cloud-monitor/pkg/runtime/terminal"
	"github.com/de-tools/cloud-monitor/pkg/runtime/terminal/commands"
	"github.com/de-tools/cloud-monitor/pkg/services/config"
	"github.com/de-tools/cloud-monitor/pkg/services/registry"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	cli := terminal.NewCLI(terminal.Options{
		Factory: newMonitor,
		Output:  os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newMonitor(ctx context.Context, opts commands.GlobalOptions) (commands.Monitor, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile:       opts.ConfigFile,
		AzureProfilePath: opts.AzureProfilePath,
		AzureProfile:     opts.AzureProfile,
	})
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	container, err := registry.NewContainer(logger.WithContext(ctx), cfg, registry.Options{})
	if err != nil {
		return nil, err
	}
	return container.Aggregator, nil
}
