package main

import (
	"context"
	"fmt"
	"os"

	"github.com/noteduco342/lanchat-backend/internal/config"
	"github.com/noteduco342/lanchat-backend/internal/repository"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lanchat",
		Short:         "LAN chat backend: HTTP API and realtime WebSocket dispatch",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and seed the admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := cfg.NewLogger()

			db, err := repository.InitDB(cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			if err := repository.SeedAdmin(repository.NewUserRepository(db), cfg.AdminUsername, cfg.AdminPassword); err != nil {
				return err
			}
			logger.Info("migration complete")
			return nil
		},
	}
}
