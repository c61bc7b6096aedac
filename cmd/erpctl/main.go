// erpctl tareas de operación: migraciones, auditoría de código muerto y seeds.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-api/pkg/config"
	"github.com/jhoicas/erp-api/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "erpctl",
		Short:         "Herramientas de operación del ERP",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log en nivel debug")

	newLogger := func() *logger.Logger {
		level := "info"
		if verbose {
			level = "debug"
		}
		return logger.New(logger.Config{Env: "development", Level: level})
	}

	root.AddCommand(
		newMigrateCmd(config.Load, newLogger),
		newAuditCmd(newLogger),
		newSeedIBGECmd(),
		newContractsCmd(openPool(config.Load), newLogger),
		newCompaniesCmd(openPool(config.Load), newLogger),
	)
	return root
}
