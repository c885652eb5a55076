package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/salesimport/internal/admin"
	"github.com/JonMunkholm/salesimport/internal/application"
	"github.com/JonMunkholm/salesimport/internal/config"
	db "github.com/JonMunkholm/salesimport/internal/database"
)

func newMigrateCmd() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the sales tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema())
				return err
			}

			cfg, err := loadPostgresConfig()
			if err != nil {
				return err
			}
			pool, err := application.OpenPool(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the schema instead of applying it")
	return cmd
}

func newResetCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all imported sales, customers, products and categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return withCode(exitUsage, errors.New("reset deletes all data; pass --yes to confirm"))
			}

			cfg, err := loadPostgresConfig()
			if err != nil {
				return err
			}
			pool, err := application.OpenPool(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			r := &admin.ResetDbs{DB: db.New(pool), KeepCategoryID: cfg.Import.FallbackCategoryID}
			if err := r.ResetAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all import data deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the reset")
	return cmd
}

func loadPostgresConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Store.Driver != config.StoreDriverPostgres {
		return nil, withCode(exitUsage, fmt.Errorf("this command needs STORE_DRIVER=%s", config.StoreDriverPostgres))
	}
	return cfg, nil
}
