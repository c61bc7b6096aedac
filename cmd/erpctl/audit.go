package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-api/pkg/deadcode"
	"github.com/jhoicas/erp-api/pkg/logger"
)

func newAuditCmd(newLogger func() *logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Auditorías del código fuente",
	}
	cmd.AddCommand(newDeadCodeCmd(deadcode.NewScanner(), newLogger))
	return cmd
}

type deadCodeScanner interface {
	Scan(ctx context.Context, opts deadcode.Options) (*deadcode.Report, error)
}

func newDeadCodeCmd(scanner deadCodeScanner, newLogger func() *logger.Logger) *cobra.Command {
	var (
		root      string
		out       string
		withTools bool
		include   []string
		exclude   []string
	)
	cmd := &cobra.Command{
		Use:   "dead-code",
		Short: "Detecta archivos y exports sin uso en un proyecto TS/JS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger().Component("deadcode")
			opts := deadcode.DefaultOptions(root)
			opts.WithTools = withTools
			if len(include) > 0 {
				opts.Include = include
			}
			if len(exclude) > 0 {
				opts.Exclude = exclude
			}

			report, err := scanner.Scan(cmd.Context(), opts)
			if err != nil {
				return err
			}
			log.Info().Int("files", report.FilesScanned).
				Int("unused_files", len(report.UnusedFiles)).
				Int("unused_exports", len(report.UnusedExports)).
				Msg("escaneo terminado")

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("crear %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "raíz del proyecto a analizar")
	cmd.Flags().StringVar(&out, "out", "report.json", "archivo del reporte (- para stdout)")
	cmd.Flags().BoolVar(&withTools, "with-tools", false, "ejecutar también npx ts-prune y npx depcheck --json")
	cmd.Flags().StringSliceVar(&include, "include", nil, "globs a incluir (doublestar)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "globs a excluir (doublestar)")
	return cmd
}
