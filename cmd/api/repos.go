package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
	"github.com/jhoicas/erp-api/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-api/pkg/config"
)

// repositories puertos de persistencia usados por los casos de uso.
type repositories struct {
	companies  repository.CompanyRepository
	users      repository.UserRepository
	warehouses repository.WarehouseRepository
	products   repository.ProductRepository
	stock      repository.StockRepository
	movements  repository.InventoryMovementRepository
	customers  repository.CustomerRepository
	sales      repository.SaleRepository
	invoices   repository.FiscalInvoiceRepository
	financial  repository.FinancialEntryRepository
	contracts  repository.ContractRepository
	production repository.ProductionOrderRepository
	plans      repository.PlanRepository
	audit      repository.AuditRepository
	lgpd       repository.LGPDRepository
	dashboard  repository.DashboardRepository
	tx         repository.TxRunner
	close      func()
}

func postgresRepositories(ctx context.Context, cfg config.DBConfig) (*repositories, error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newPostgresRepositories(pool), nil
}

func newPostgresRepositories(pool *pgxpool.Pool) *repositories {
	return &repositories{
		companies:  postgres.NewCompanyRepository(pool),
		users:      postgres.NewUserRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		products:   postgres.NewProductRepository(pool),
		stock:      postgres.NewStockRepository(pool),
		movements:  postgres.NewInventoryMovementRepository(pool),
		customers:  postgres.NewCustomerRepository(pool),
		sales:      postgres.NewSaleRepository(pool),
		invoices:   postgres.NewFiscalInvoiceRepository(pool),
		financial:  postgres.NewFinancialEntryRepository(pool),
		contracts:  postgres.NewContractRepository(pool),
		production: postgres.NewProductionOrderRepository(pool),
		plans:      postgres.NewPlanRepository(pool),
		audit:      postgres.NewAuditRepository(pool),
		lgpd:       postgres.NewLGPDRepository(pool),
		dashboard:  postgres.NewDashboardRepository(pool),
		tx:         postgres.NewTxRunner(pool),
		close:      pool.Close,
	}
}

// memoryRepositories mismo catálogo de planes que la migración 000002.
func memoryRepositories() *repositories {
	store := memory.NewStore()
	plans := store.Plans()
	for _, p := range []entity.Plan{
		{Code: "basico", Name: "Básico", PriceCents: 9900, Active: true,
			Modules: []string{entity.ModuleInventory, entity.ModuleSales, entity.ModuleFinancial}},
		{Code: "profissional", Name: "Profissional", PriceCents: 19900, Active: true,
			Modules: []string{entity.ModuleInventory, entity.ModuleSales, entity.ModuleFinancial, entity.ModuleFiscal, entity.ModuleContracts, entity.ModuleLGPD}},
		{Code: "enterprise", Name: "Enterprise", PriceCents: 39900, Active: true, Modules: entity.AllModules},
	} {
		plans.SeedPlan(p)
	}
	return &repositories{
		companies:  store.Companies(),
		users:      store.Users(),
		warehouses: store.Warehouses(),
		products:   store.Products(),
		stock:      store.Stock(),
		movements:  store.Movements(),
		customers:  store.Customers(),
		sales:      store.Sales(),
		invoices:   store.FiscalInvoices(),
		financial:  store.Financial(),
		contracts:  store.Contracts(),
		production: store.Production(),
		plans:      plans,
		audit:      store.Audit(),
		lgpd:       store.LGPD(),
		dashboard:  store.Dashboard(),
		tx:         memory.NewTxRunner(store),
		close:      func() {},
	}
}
