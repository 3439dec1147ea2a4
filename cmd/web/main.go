package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/fleet-atlas/pkg/config"
	"github.com/de-tools/fleet-atlas/pkg/runtime/app"
	"github.com/de-tools/fleet-atlas/pkg/server"
	"github.com/de-tools/fleet-atlas/pkg/services/refresh"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Fleet Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the YAML configuration file (defaults and FLEET_ATLAS_* variables apply when omitted)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zerolog.New(os.Stdout).
		Level(cfg.Log.ZerologLevel()).
		With().Timestamp().Logger()
	ctx, cancel := context.WithCancel(logger.WithContext(cmd.Context()))
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	runner := refresh.NewRunner(a.Service, cfg.Refresh.Interval)
	go runner.Run(ctx)

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Inventory: a.Service,
			Gatherer:  reg,
		},
	})

	err = webAPI.Start(ctx)

	// Stop scheduling and let an in-flight cycle finish before the history
	// database closes.
	cancel()
	<-runner.Done()
	a.Service.Wait()
	return err
}
