package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/practice/backend/internal/bootstrap"
	"github.com/practice/backend/internal/infrastructure/cache"
	"github.com/practice/backend/internal/infrastructure/config"
	"github.com/practice/backend/internal/infrastructure/logger"
	"github.com/practice/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the global flags and the resources opened for one command
type app struct {
	configFile string
	envFile    string
	tenant     string
	logLevel   string
	output     string

	cfg    *config.Config
	log    *zap.Logger
	closer []func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "practicectl",
		Short: "Operate the practice billing engine from the command line",
		Long: `practicectl drives the recurring-billing engine directly against its database.

It generates the periods and checklist tasks of an engagement up to a date,
regenerates them from scratch, and reconciles ledger balances with their
transaction history.

Example:
  practicectl --tenant 5f0c... generate 9a41... --as-of 2025-03-31
  practicectl --tenant 5f0c... trial-balance`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./config.toml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	flags.StringVar(&a.tenant, "tenant", "", "tenant id (or PRACTICE_TENANT_ID)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVarP(&a.output, "output", "o", "text", "output format: text or json")

	root.AddCommand(newGenerateCmd(a, false), newGenerateCmd(a, true), newTrialBalanceCmd(a))
	return root
}

// setup loads the dotenv file, the configuration and the logger. A missing
// default .env is not an error.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(a.envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("env-file") {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	switch a.output {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := config.LoadFile(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"}
	if a.logLevel != "" {
		logCfg.Level = a.logLevel
	}
	log, err := logger.New(logCfg, logger.WithFields(zap.String("command", cmd.Name())))
	if err != nil {
		return err
	}
	a.log = log
	a.closer = append(a.closer, func() error {
		_ = log.Sync()
		return nil
	})
	return nil
}

// run wraps a command body so opened resources are released even when it fails
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, a.close())
		}()
		return fn(cmd, args)
	}
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closer) - 1; i >= 0; i-- {
		if err := a.closer[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closer = nil
	return errors.Join(errs...)
}

func (a *app) tenantID() (uuid.UUID, error) {
	raw := a.tenant
	if raw == "" {
		raw = os.Getenv("PRACTICE_TENANT_ID")
	}
	if raw == "" {
		return uuid.Nil, errors.New("--tenant is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid tenant id %q: %w", raw, err)
	}
	return id, nil
}

// services opens the database and the generation lock and wires the engine
func (a *app) services(ctx context.Context) (*bootstrap.Services, error) {
	db, err := persistence.NewDatabase(a.cfg.Database, persistence.Options{
		Logger:        a.log,
		LogLevel:      logger.MapGormLogLevel(a.cfg.Log.Level),
		SlowThreshold: a.cfg.Telemetry.DBSlowQueryThresh,
	})
	if err != nil {
		return nil, err
	}
	a.closer = append(a.closer, db.Close)

	if a.cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate sqlite schema: %w", err)
		}
	}

	lock, closeLock, err := cache.NewGenerationLock(ctx, a.cfg.Redis, a.log)
	if err != nil {
		return nil, err
	}
	a.closer = append(a.closer, closeLock)

	opts := bootstrap.OptionsFromConfig(a.cfg)
	opts.Lock = lock
	opts.Logger = a.log
	return bootstrap.NewServices(db.DB, opts), nil
}
