// @title                       ERP API
// @version                     1.0
// @description                 ERP multiempresa: inventario, ventas, NF-e, financiero, contratos, producción y LGPD.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization

//go:generate swag init -g cmd/api/main.go -d ../../ -o ../../docs
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/erp-api/docs"
	"github.com/jhoicas/erp-api/internal/application/analytics"
	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/application/billing"
	"github.com/jhoicas/erp-api/internal/application/fiscal"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/application/production"
	"github.com/jhoicas/erp-api/internal/application/sales"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/infrastructure/nfeio"
	"github.com/jhoicas/erp-api/internal/infrastructure/payments"
	infrapdf "github.com/jhoicas/erp-api/internal/infrastructure/pdf"
	"github.com/jhoicas/erp-api/internal/infrastructure/storage"
	"github.com/jhoicas/erp-api/internal/infrastructure/viacep"
	httpRouter "github.com/jhoicas/erp-api/internal/interfaces/http"
	"github.com/jhoicas/erp-api/pkg/cache"
	"github.com/jhoicas/erp-api/pkg/config"
	"github.com/jhoicas/erp-api/pkg/deadcode"
	"github.com/jhoicas/erp-api/pkg/logger"
	"github.com/jhoicas/erp-api/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var repos *repositories
	if cfg.DB.InMemory {
		log.Warn().Msg("DB_IN_MEMORY activo: los datos se pierden al reiniciar")
		repos = memoryRepositories()
	} else {
		repos, err = postgresRepositories(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
	}
	defer repos.close()

	var backend cache.Backend = cache.NewMemoryBackend()
	if cfg.Redis.Addr != "" {
		rb, err := cache.NewRedisBackend(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		backend = rb
	}
	appCache := cache.New(backend, log.Component("cache"))

	var objects ports.ObjectStorage = storage.NewMemoryStorage()
	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3Storage(ctx, cfg.Storage, log.Component("storage"))
		if err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("almacenamiento S3")
		}
		objects = s3
	} else {
		log.Warn().Msg("STORAGE_BUCKET vacío: XML de NF-e en memoria")
	}

	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.Retry.MaxAttempts
	policy.BaseDelay = cfg.Retry.BaseDelay
	policy.MaxDelay = cfg.Retry.MaxDelay

	cepClient := viacep.NewClient(cfg.ViaCEP.BaseURL, cfg.ViaCEP.Timeout, policy)
	nfeClient := nfeio.NewClient(cfg.NFe.BaseURL, cfg.NFe.APIKey, cfg.NFe.Timeout, policy)
	stripeGateway := payments.NewStripeGateway(cfg.Stripe, policy, log.Component("stripe"))
	receipts := infrapdf.NewReceiptGenerator()

	authUC := auth.NewAuthUseCase(repos.users, repos.companies, repos.audit, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	userUC := usecase.NewUserUseCase(repos.users)
	companyUC := usecase.NewCompanyUseCase(repos.companies, appCache)
	moduleSvc := usecase.NewModuleService(repos.companies, appCache)
	warehouseUC := usecase.NewWarehouseUseCase(repos.warehouses)
	productUC := usecase.NewProductUseCase(repos.products)
	registerMovementUC := inventory.NewRegisterMovementUseCase(repos.tx, repos.products, repos.warehouses, repos.movements, repos.stock)
	replenishmentUC := inventory.NewReplenishmentUseCase(repos.stock, repos.products)
	customerUC := usecase.NewCustomerUseCase(repos.customers, cepClient, log.Component("customers"))
	salesUC := sales.NewUseCase(repos.tx, repos.sales, repos.products, repos.warehouses, repos.customers,
		repos.companies, repos.invoices, receipts, appCache, log.Component("sales"))
	fiscalUC := fiscal.NewUseCase(repos.tx, repos.invoices, repos.sales, repos.companies, repos.customers, repos.products,
		nfeClient, objects, appCache, log.Component("fiscal"))
	financialUC := usecase.NewFinancialUseCase(repos.financial, appCache)
	contractUC := usecase.NewContractUseCase(repos.contracts, repos.customers, log.Component("contracts"))
	productionUC := production.NewUseCase(repos.tx, repos.production, repos.products, repos.warehouses, appCache, log.Component("production"))
	lgpdUC := usecase.NewLGPDUseCase(repos.lgpd, repos.customers, repos.sales, log.Component("lgpd"))
	auditUC := usecase.NewAuditUseCase(repos.audit, deadcode.NewScanner(), cfg.Audit.SourceDir, log.Component("audit"))
	billingUC := billing.NewUseCase(repos.plans, repos.companies, stripeGateway, appCache, log.Component("billing"))
	dashboardUC := analytics.NewDashboardUseCase(repos.dashboard, repos.stock, repos.financial, repos.audit, appCache)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := httpRouter.NewMetrics(reg)
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Swagger UI en local: http://localhost:<port>/docs (documento regenerado con go generate ./cmd/api)
	app.Get("/docs/doc.json", func(c *fiber.Ctx) error {
		c.Type("json")
		return c.SendString(docs.SwaggerInfo.ReadDoc())
	})
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "ERP API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		UserUC:           userUC,
		CompanyUC:        companyUC,
		ModuleService:    moduleSvc,
		WarehouseUC:      warehouseUC,
		ProductUC:        productUC,
		RegisterMovement: registerMovementUC,
		Replenishment:    replenishmentUC,
		CustomerUC:       customerUC,
		SalesUC:          salesUC,
		FiscalUC:         fiscalUC,
		FinancialUC:      financialUC,
		ContractUC:       contractUC,
		ProductionUC:     productionUC,
		LGPDUC:           lgpdUC,
		AuditUC:          auditUC,
		BillingUC:        billingUC,
		DashboardUC:      dashboardUC,
		JWTSecret:        cfg.JWT.Secret,
		Log:              log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
