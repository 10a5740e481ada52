package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/uferekalu/finacle-banking/configs"
	"github.com/uferekalu/finacle-banking/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demo users and funded accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DB.Driver != configs.DriverPostgres {
				return errors.New("seed needs db.driver=postgres; use serve --seed with the memory store")
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return seed.Run(cmd.Context(), s, a.engine(s), a.log)
		},
	}
}
