package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-extras/cobraflags"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/logger"
)

const (
	configFlag = "config"
	dirFlag    = "dir"
	seedsFlag  = "seeds"
)

func newFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		configFlag: &cobraflags.StringFlag{
			Name:  configFlag,
			Value: "",
			Usage: "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)",
		},
		dirFlag: &cobraflags.StringFlag{
			Name:  dirFlag,
			Value: "assets/migrations",
			Usage: "directory containing migration files",
		},
		seedsFlag: &cobraflags.StringFlag{
			Name:  seedsFlag,
			Value: "assets/seeds",
			Usage: "directory containing seed sql files",
		},
	}
}

func main() {
	logger.Init(os.Getenv("LOG_ENV"))

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the job board database schema",
		SilenceUsage: true,
	}
	root.AddCommand(
		newActionCommand("up", "Apply all pending migrations"),
		newActionCommand("down", "Revert all migrations"),
		newActionCommand("drop", "Drop everything in the database"),
		newActionCommand("version", "Print the current migration version"),
		newSeedCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newActionCommand(action, short string) *cobra.Command {
	flags := newFlags()
	cmd := &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(effectiveConfigPath(flags[configFlag].GetString()))
			if err != nil {
				return err
			}
			if err := runMigration(action, flags[dirFlag].GetString(), cfg.Database.DSN()); err != nil {
				return fmt.Errorf("migration %s failed: %w", action, err)
			}
			slog.Info("migration completed", "action", action)
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func newSeedCommand() *cobra.Command {
	flags := newFlags()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load seed data (users) from sql files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(effectiveConfigPath(flags[configFlag].GetString()))
			if err != nil {
				return err
			}
			return runSeeds(cmd.Context(), cfg.Database, flags[seedsFlag].GetString())
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

func runMigration(action, dir, dsn string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				slog.Info("no migration applied")
				return nil
			}
			return err
		}
		slog.Info("migration version", "version", version, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}

// runSeeds は dir 配下の .sql ファイルをファイル名順に実行します。
func runSeeds(ctx context.Context, cfg config.DatabaseConfig, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("list seeds in %s: %w", dir, err)
	}
	sort.Strings(files)

	pool, err := pg.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read seed %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply seed %s: %w", f, err)
		}
		slog.Info("seed applied", "file", filepath.Base(f))
	}
	return nil
}
