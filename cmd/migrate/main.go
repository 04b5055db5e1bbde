package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/pressly/goose/v3"

	"comicgallery/internal/platform/logging"
	"comicgallery/internal/store"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, version, reset, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()

	if *command == "create" {
		if *name == "" {
			logging.Fatal().Msg("name is required for 'create' command")
		}
		if err := goose.Create(nil, sourceDir(), *name, "sql"); err != nil {
			logging.Fatal().Err(err).Msg("failed to create migration")
		}
		logging.Info().Str("name", *name).Str("dir", sourceDir()).Msg("migration created")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := store.Migrate(ctx, databaseDSN(), *command); err != nil {
		logging.Fatal().Err(err).Str("command", *command).Msg("migration failed")
	}
	logging.Info().Str("command", *command).Msg("migration finished")
}
