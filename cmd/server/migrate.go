package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/uferekalu/finacle-banking/configs"
	"github.com/uferekalu/finacle-banking/internal/store"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DB.Driver != configs.DriverPostgres || a.cfg.DB.DSN == "" {
				return errors.New("migrate needs db.driver=postgres and db.dsn")
			}
			db, err := store.OpenPostgres(store.PostgresConfig{
				DSN:          a.cfg.DB.DSN,
				MaxOpenConns: a.cfg.DB.MaxOpenConns,
			}, a.log)
			if err != nil {
				return err
			}
			defer func() { _ = store.NewGormStore(db, 0).Close() }()
			return store.Migrate(db, a.log)
		},
	}
}
