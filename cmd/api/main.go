package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "loan-pipeline",
		Short:         "Loan pipeline state machine API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a TOML config file (env vars override it)")
	root.AddCommand(newServeCmd(&cfgPath), newMigrateCmd(&cfgPath))
	return root
}

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the payment subscriber",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, newLogger())
		},
	}
}

func newMigrateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			gdb, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(gdb)
			newLogger().Info("schema migrated", "driver", cfg.DBDriver)
			return nil
		},
	}
}
