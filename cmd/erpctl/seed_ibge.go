package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-api/pkg/ibge"
)

func newSeedIBGECmd() *cobra.Command {
	var (
		in    string
		out   string
		utf8  bool
		batch int
	)
	cmd := &cobra.Command{
		Use:   "seed-ibge",
		Short: "Genera el SQL de ibge_municipalities desde la DTB del IBGE (CSV ISO-8859-1)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("abrir %s: %w", in, err)
			}
			defer f.Close()

			var r io.Reader = f
			if !utf8 {
				r = ibge.Latin1Reader(f)
			}
			list, err := ibge.Parse(r)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				of, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("crear %s: %w", out, err)
				}
				defer of.Close()
				w = of
			}
			if err := ibge.WriteSQL(w, list, batch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d municípios\n", len(list))
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "municipios.csv", "CSV de la DTB")
	cmd.Flags().StringVar(&out, "out", "-", "archivo SQL de salida (- para stdout)")
	cmd.Flags().BoolVar(&utf8, "utf8", false, "la entrada ya está en UTF-8")
	cmd.Flags().IntVar(&batch, "batch", 500, "filas por INSERT")
	return cmd
}
