package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/analytics"
	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/application/billing"
	"github.com/jhoicas/erp-api/internal/application/fiscal"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/production"
	"github.com/jhoicas/erp-api/internal/application/sales"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	UserUC           *usecase.UserUseCase
	CompanyUC        *usecase.CompanyUseCase
	ModuleService    *usecase.ModuleService
	WarehouseUC      *usecase.WarehouseUseCase
	ProductUC        *usecase.ProductUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	CustomerUC       *usecase.CustomerUseCase
	SalesUC          *sales.UseCase
	FiscalUC         *fiscal.UseCase
	FinancialUC      *usecase.FinancialUseCase
	ContractUC       *usecase.ContractUseCase
	ProductionUC     *production.UseCase
	LGPDUC           *usecase.LGPDUseCase
	AuditUC          *usecase.AuditUseCase
	BillingUC        *billing.UseCase
	DashboardUC      *analytics.DashboardUseCase
	JWTSecret        string
	Log              zerolog.Logger
}

// Router registra las rutas de la API. Las rutas públicas van primero: el middleware
// del grupo protegido se registra sobre /api y alcanzaría a las que vengan después.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC, log)
	companyHandler := NewCompanyHandler(deps.CompanyUC, log)
	billingHandler := NewBillingHandler(deps.BillingUC, deps.UserUC, log)

	// Públicas
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/companies", companyHandler.Create)
	api.Get("/billing/plans", billingHandler.ListPlans)
	api.Post("/billing/webhook", billingHandler.Webhook)

	// Funciones: CORS abierto y el mismo JWT que la API.
	functions := app.Group("/functions/v1",
		cors.New(cors.Config{
			AllowOrigins: "*",
			AllowHeaders: "Authorization, X-Client-Info, Apikey, Content-Type",
			AllowMethods: "POST, OPTIONS",
		}),
		AuthMiddleware(deps.JWTSecret),
		AuditMiddleware(deps.AuditUC),
	)
	functionsHandler := NewFunctionsHandler(deps.CustomerUC, deps.AuditUC, deps.UserUC, log)
	functions.Post("/:name", functionsHandler.Invoke)

	protected := api.Group("", AuthMiddleware(deps.JWTSecret), AuditMiddleware(deps.AuditUC))
	adminOnly := RequireRole(entity.RoleAdmin)
	managers := RequireRole(entity.RoleAdmin, entity.RoleGerente)
	module := func(name string) fiber.Handler { return RequireModule(name, deps.ModuleService, log) }

	// Perfil, usuarios y empresa
	protected.Get("/me", authHandler.Me)
	protected.Put("/me", authHandler.UpdateMe)
	protected.Get("/users", managers, authHandler.ListUsers)
	protected.Get("/company", companyHandler.Get)
	protected.Put("/company", adminOnly, companyHandler.Update)
	protected.Get("/company/modules", companyHandler.ListModules)
	protected.Put("/company/modules", adminOnly, companyHandler.SetModule)

	// Billing
	protected.Get("/billing/subscription", billingHandler.GetSubscription)
	protected.Post("/billing/checkout", adminOnly, billingHandler.Checkout)

	// Clientes (base de todos los módulos)
	customerHandler := NewCustomerHandler(deps.CustomerUC, log)
	customers := protected.Group("/customers")
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", managers, customerHandler.Delete)

	// Inventario
	stockWriters := RequireRole(entity.RoleAdmin, entity.RoleGerente, entity.RoleEstoquista)
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, log)
	warehouses := protected.Group("/warehouses", module(entity.ModuleInventory))
	warehouses.Post("/", managers, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	productHandler := NewProductHandler(deps.ProductUC, log)
	products := protected.Group("/products", module(entity.ModuleInventory))
	products.Post("/", stockWriters, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", stockWriters, productHandler.Update)

	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Replenishment, log)
	inv := protected.Group("/inventory", module(entity.ModuleInventory))
	inv.Post("/movements", stockWriters, inventoryHandler.RegisterMovement)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/stock", inventoryHandler.GetStock)
	inv.Get("/replenishment-list", inventoryHandler.GetReplenishmentList)

	// Ventas
	sellers := RequireRole(entity.RoleAdmin, entity.RoleGerente, entity.RoleVendedor)
	salesHandler := NewSalesHandler(deps.SalesUC, log)
	salesGroup := protected.Group("/sales", module(entity.ModuleSales))
	salesGroup.Post("/", sellers, salesHandler.Create)
	salesGroup.Get("/", salesHandler.List)
	salesGroup.Get("/:id", salesHandler.GetByID)
	salesGroup.Get("/:id/receipt", salesHandler.Receipt)
	salesGroup.Post("/:id/cancel", managers, salesHandler.Cancel)
	protected.Post("/marketplace/orders", module(entity.ModuleMarketplace), sellers, salesHandler.ImportOrder)

	// Fiscal
	finance := RequireRole(entity.RoleAdmin, entity.RoleGerente, entity.RoleFinanceiro)
	fiscalHandler := NewFiscalHandler(deps.FiscalUC, log)
	nfe := protected.Group("/fiscal/nfe", module(entity.ModuleFiscal))
	nfe.Post("/", finance, fiscalHandler.Issue)
	nfe.Get("/", fiscalHandler.List)
	nfe.Get("/:id", fiscalHandler.GetByID)
	nfe.Get("/:id/xml", fiscalHandler.DownloadXML)
	nfe.Post("/:id/refresh", finance, fiscalHandler.Refresh)
	nfe.Post("/:id/cancel", finance, fiscalHandler.Cancel)

	// Financiero
	financialHandler := NewFinancialHandler(deps.FinancialUC, log)
	fin := protected.Group("/financial", module(entity.ModuleFinancial), finance)
	fin.Post("/entries", financialHandler.Create)
	fin.Get("/entries", financialHandler.List)
	fin.Get("/entries/:id", financialHandler.GetByID)
	fin.Post("/entries/:id/pay", financialHandler.MarkPaid)
	fin.Post("/entries/:id/cancel", financialHandler.Cancel)
	fin.Get("/cashflow", financialHandler.CashFlow)

	// Contratos: rutas fijas antes de /:id
	contractHandler := NewContractHandler(deps.ContractUC, log)
	contracts := protected.Group("/contracts", module(entity.ModuleContracts))
	contracts.Post("/", managers, contractHandler.Create)
	contracts.Get("/", contractHandler.List)
	contracts.Get("/expiring", contractHandler.Expiring)
	contracts.Post("/expire-sweep", adminOnly, contractHandler.ExpireSweep)
	contracts.Get("/:id", contractHandler.GetByID)
	contracts.Post("/:id/renew", managers, contractHandler.Renew)
	contracts.Post("/:id/:action", managers, contractHandler.Transition)

	// Producción
	productionHandler := NewProductionHandler(deps.ProductionUC, log)
	prod := protected.Group("/production/orders", module(entity.ModuleProduction))
	prod.Post("/", stockWriters, productionHandler.Create)
	prod.Get("/", productionHandler.List)
	prod.Get("/:id", productionHandler.GetByID)
	prod.Post("/:id/:action", stockWriters, productionHandler.Transition)

	// LGPD
	lgpdHandler := NewLGPDHandler(deps.LGPDUC, log)
	lgpd := protected.Group("/lgpd", module(entity.ModuleLGPD))
	lgpd.Post("/consents", lgpdHandler.RecordConsent)
	lgpd.Get("/consents", lgpdHandler.ListConsents)
	lgpd.Post("/consents/:id/revoke", lgpdHandler.RevokeConsent)
	lgpd.Post("/requests", lgpdHandler.OpenRequest)
	lgpd.Get("/requests", lgpdHandler.ListRequests)
	lgpd.Get("/requests/:id", lgpdHandler.GetRequest)
	lgpd.Post("/requests/:id/process", adminOnly, lgpdHandler.ProcessRequest)
	lgpd.Post("/requests/:id/reject", adminOnly, lgpdHandler.RejectRequest)

	// Dashboards
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, log)
	protected.Get("/dashboard/admin", managers, dashboardHandler.Admin)
	protected.Get("/dashboard/security", adminOnly, dashboardHandler.Security)
}
