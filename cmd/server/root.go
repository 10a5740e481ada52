package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uferekalu/finacle-banking/configs"
	"github.com/uferekalu/finacle-banking/internal/handlers"
	"github.com/uferekalu/finacle-banking/internal/ledger"
	"github.com/uferekalu/finacle-banking/internal/logger"
	"github.com/uferekalu/finacle-banking/internal/middleware"
	"github.com/uferekalu/finacle-banking/internal/store"
)

type app struct {
	configDir string
	cfg       *configs.Config
	log       *zap.Logger
}

// backend is what a configured store offers the rest of the service.
type backend interface {
	ledger.Store
	handlers.Users
	middleware.IdempotencyStore
	Close() error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "finacle",
		Short:         "Account ledger and funds movement service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configs.Load(a.configDir)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.Log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Log.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config", "./configs", "directory containing config.yaml")

	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newSeedCmd(a))
	return root
}

func (a *app) openStore() (backend, error) {
	switch a.cfg.DB.Driver {
	case configs.DriverMemory:
		a.log.Warn("using in-memory store, data is lost on exit")
		return store.NewMemoryStore(a.cfg.DB.LockTimeout), nil
	case configs.DriverPostgres:
		db, err := store.OpenPostgres(store.PostgresConfig{
			DSN:          a.cfg.DB.DSN,
			MaxOpenConns: a.cfg.DB.MaxOpenConns,
		}, a.log)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(db, a.log); err != nil {
			return nil, err
		}
		return store.NewGormStore(db, a.cfg.DB.LockTimeout), nil
	}
	return nil, fmt.Errorf("unknown db.driver %q", a.cfg.DB.Driver)
}

func (a *app) engine(s backend) *ledger.Engine {
	return ledger.NewEngine(s, s, a.gateway(), a.log.Named("ledger"), ledger.Options{
		MaxAttempts:    a.cfg.Ledger.MaxAttempts,
		InitialBackoff: a.cfg.Ledger.InitialBackoff,
		MaxBackoff:     a.cfg.Ledger.MaxBackoff,
		WriteTimeout:   a.cfg.Ledger.WriteTimeout,
		GatewayTimeout: a.cfg.Gateway.Timeout,
	})
}
