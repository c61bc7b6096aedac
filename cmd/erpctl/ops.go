package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-api/pkg/cache"
	"github.com/jhoicas/erp-api/pkg/config"
	"github.com/jhoicas/erp-api/pkg/logger"
)

type poolOpener func(cmd *cobra.Command) (*pgxpool.Pool, error)

func openPool(loadConfig func() (*config.Config, error)) poolOpener {
	return func(cmd *cobra.Command) (*pgxpool.Pool, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		return postgres.NewPool(cmd.Context(), cfg.DB)
	}
}

// newContractsCmd barrido de vencimientos para todas las empresas (pensado para cron).
func newContractsCmd(open poolOpener, newLogger func() *logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "Tareas sobre contratos",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "expire-sweep",
		Short: "Vence o renueva los contratos con fecha final pasada",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := open(cmd)
			if err != nil {
				return err
			}
			defer pool.Close()
			uc := usecase.NewContractUseCase(postgres.NewContractRepository(pool), postgres.NewCustomerRepository(pool), newLogger().Component("contracts"))
			res, err := uc.ExpireSweep(cmd.Context(), "")
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
		},
	})
	return cmd
}

func newCompaniesCmd(open poolOpener, newLogger func() *logger.Logger) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "Empresas de la plataforma",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "Lista las empresas registradas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := open(cmd)
			if err != nil {
				return err
			}
			defer pool.Close()
			uc := usecase.NewCompanyUseCase(postgres.NewCompanyRepository(pool), cache.New(cache.NewMemoryBackend(), newLogger().Component("companies")))
			out, err := uc.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCNPJ\tNOMBRE")
			for _, c := range out.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.CNPJ, c.Name)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "máximo de filas")
	list.Flags().IntVar(&offset, "offset", 0, "desplazamiento")
	cmd.AddCommand(list)
	return cmd
}
