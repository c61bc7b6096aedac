package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-api/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-api/pkg/config"
	"github.com/jhoicas/erp-api/pkg/logger"
)

func newMigrateCmd(loadConfig func() (*config.Config, error), newLogger func() *logger.Logger) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de base de datos (golang-migrate)",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "directorio de migraciones (por defecto DB_MIGRATIONS_PATH)")

	open := func() (*postgres.Migrator, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		dir := path
		if dir == "" {
			dir = cfg.DB.MigrationsPath
		}
		return postgres.NewMigrator(cfg.DB.ConnectionString(), dir, newLogger().Component("migrate"))
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Aplica las migraciones pendientes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				return m.Up()
			},
		},
		&cobra.Command{
			Use:   "down [n]",
			Short: "Revierte n migraciones (todas si se omite)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n := 0
				if len(args) == 1 {
					v, err := strconv.Atoi(args[0])
					if err != nil || v < 1 {
						return fmt.Errorf("n debe ser un entero positivo: %q", args[0])
					}
					n = v
				}
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				return m.Down(n)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Muestra la versión aplicada",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
				return nil
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Marca la versión sin ejecutar SQL (limpia el estado dirty)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("versión inválida: %q", args[0])
				}
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()
				return m.Force(v)
			},
		},
	)
	return cmd
}
