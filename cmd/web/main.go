package main

import (
	"fmt"
	"os"

	"github.com/de-tools/cloud-monitor/pkg/server"
	"github.com/de-tools/cloud-monitor/pkg/services/config"
	"github.com/de-tools/cloud-monitor/pkg/services/registry"
	"github.com/de-tools/cloud-monitor/pkg/telemetry"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var loadOpts config.LoadOptions

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the cloud monitor web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&loadOpts.ConfigFile, "config", "c", "",
		"Path to an optional YAML config file")
	rootCmd.Flags().StringVar(&loadOpts.AzureProfilePath, "azure-profile", "",
		"Path to an Azure config file (e.g. $HOME/.azure/config)")
	rootCmd.Flags().StringVar(&loadOpts.AzureProfile, "profile", config.DefaultAzureProfile,
		"Section of the Azure config file to use")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(loadOpts)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("Missing server configuration")
		return err
	}

	container, err := registry.NewContainer(ctx, cfg, registry.Options{Metrics: telemetry.NewMetrics()})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	api := server.NewWebAPI(server.Config{
		Addr:            cfg.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		CORSOrigins:     cfg.Server.CORSOrigins,
		Dependencies: server.Dependencies{
			Monitor: container.Aggregator,
			Metrics: container.Metrics,
			Logger:  logger,
		},
	})

	return api.Start(ctx)
}
