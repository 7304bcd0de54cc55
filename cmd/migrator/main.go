package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/YusovID/service-requests/internal/config"
	"github.com/YusovID/service-requests/pkg/logger/sl"
	"github.com/YusovID/service-requests/pkg/logger/slogpretty"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Usage: migrator [up|down|version]. Without a verb it applies pending migrations.
func main() {
	cfg := config.MustLoad()
	log := slogpretty.SetupLogger(cfg.Env)

	verb := "up"
	if len(os.Args) > 1 {
		verb = os.Args[1]
	}

	if err := run(log, cfg, verb); err != nil {
		log.Error("migration failed", slog.String("command", verb), sl.Err(err))
		os.Exit(1)
	}
}

func run(log *slog.Logger, cfg *config.Config, verb string) error {
	log = log.With(
		slog.String("command", verb),
		slog.String("path", cfg.Migrations.Path),
		slog.String("table", cfg.Migrations.Table),
	)

	m, err := migrate.New("file://"+cfg.Migrations.Path, cfg.Postgres.MigrateURL(cfg.Migrations.Table))
	if err != nil {
		return fmt.Errorf("can't create migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn("failed to close migrator", sl.Err(errors.Join(srcErr, dbErr)))
		}
	}()

	switch verb {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		return version(log, m)
	default:
		return fmt.Errorf("unknown command %q, want up, down or version", verb)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("schema is already current")
		return nil
	}
	if err != nil {
		return err
	}

	return version(log, m)
}

func version(log *slog.Logger, m *migrate.Migrate) error {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info("no migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("can't read schema version: %w", err)
	}

	log.Info("schema version", slog.Uint64("version", uint64(v)), slog.Bool("dirty", dirty))

	return nil
}
