package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/fleet-atlas/pkg/config"
	"github.com/de-tools/fleet-atlas/pkg/runtime/app"
	"github.com/de-tools/fleet-atlas/pkg/runtime/terminal"
	"github.com/de-tools/fleet-atlas/pkg/runtime/terminal/commands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func open(ctx context.Context, configPath string) (*commands.Session, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(cfg.Log.ZerologLevel()).
		With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}

	return &commands.Session{
		Inventory: a.Service,
		Accounts:  a.Registry.Accounts(ctx),
		Close:     a.Close,
	}, nil
}

func main() {
	_ = godotenv.Load()

	cli := terminal.NewCLI(terminal.Options{
		Open:   open,
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
