package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/analytics"
	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/application/billing"
	"github.com/jhoicas/erp-api/internal/application/fiscal"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/production"
	"github.com/jhoicas/erp-api/internal/application/sales"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/erp-api/internal/interfaces/http"
	"github.com/jhoicas/erp-api/pkg/cache"
	pkgjwt "github.com/jhoicas/erp-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "erp-api-test"
	testExpMin    = 60
)

// tokenForRole genera el header Authorization con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// buildRouterApp monta el router real sobre el store en memoria con los módulos indicados activos.
func buildRouterApp(t *testing.T, modules ...string) *fiber.App {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Companies().Create(ctx, &entity.Company{ID: testCompanyID, Name: "Loja", CNPJ: "11222333000181"}))
	require.NoError(t, s.Users().Create(ctx, &entity.User{
		ID: testUserID, CompanyID: testCompanyID, Email: "ana@empresa.com.br", Name: "Ana",
		Role: entity.RoleAdmin, Status: entity.UserStatusActive,
	}))
	for _, m := range modules {
		require.NoError(t, s.Companies().SetModule(ctx, &entity.CompanyModule{CompanyID: testCompanyID, ModuleName: m, IsActive: true}))
	}

	log := zerolog.Nop()
	c := cache.New(cache.NewMemoryBackend(), log)
	tx := memory.NewTxRunner(s)
	audit := usecase.NewAuditUseCase(s.Audit(), nil, "", log)
	deps := apphttp.RouterDeps{
		AuthUC:           auth.NewAuthUseCase(s.Users(), s.Companies(), s.Audit(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log),
		UserUC:           usecase.NewUserUseCase(s.Users()),
		CompanyUC:        usecase.NewCompanyUseCase(s.Companies(), c),
		ModuleService:    usecase.NewModuleService(s.Companies(), c),
		WarehouseUC:      usecase.NewWarehouseUseCase(s.Warehouses()),
		ProductUC:        usecase.NewProductUseCase(s.Products()),
		RegisterMovement: inventory.NewRegisterMovementUseCase(tx, s.Products(), s.Warehouses(), s.Movements(), s.Stock()),
		Replenishment:    inventory.NewReplenishmentUseCase(s.Stock(), s.Products()),
		CustomerUC:       usecase.NewCustomerUseCase(s.Customers(), notFoundCEP{}, log),
		SalesUC: sales.NewUseCase(tx, s.Sales(), s.Products(), s.Warehouses(), s.Customers(), s.Companies(),
			s.FiscalInvoices(), nil, c, log),
		FiscalUC: fiscal.NewUseCase(tx, s.FiscalInvoices(), s.Sales(), s.Companies(), s.Customers(), s.Products(),
			nil, nil, c, log),
		FinancialUC:  usecase.NewFinancialUseCase(s.Financial(), c),
		ContractUC:   usecase.NewContractUseCase(s.Contracts(), s.Customers(), log),
		ProductionUC: production.NewUseCase(tx, s.Production(), s.Products(), s.Warehouses(), c, log),
		LGPDUC:       usecase.NewLGPDUseCase(s.LGPD(), s.Customers(), s.Sales(), log),
		AuditUC:      audit,
		BillingUC:    billing.NewUseCase(s.Plans(), s.Companies(), nil, c, log),
		DashboardUC:  analytics.NewDashboardUseCase(s.Dashboard(), s.Stock(), s.Financial(), s.Audit(), c),
		JWTSecret:    testJWTSecret,
		Log:          log,
	}
	app := fiber.New()
	apphttp.Router(app, deps)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRouter_PermisosPorRol(t *testing.T) {
	app := buildRouterApp(t, entity.ModuleFinancial, entity.ModuleSales, entity.ModuleContracts)
	const missing = "/api/sales/00000000-0000-0000-0000-0000000000ff/cancel"

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		status int
	}{
		// financiero: admin, gerente y financeiro
		{"financeiro lista lançamentos", http.MethodGet, "/api/financial/entries", entity.RoleFinanceiro, http.StatusOK},
		{"gerente lista lançamentos", http.MethodGet, "/api/financial/entries", entity.RoleGerente, http.StatusOK},
		{"vendedor sin acceso al financiero", http.MethodGet, "/api/financial/entries", entity.RoleVendedor, http.StatusForbidden},
		{"estoquista sin acceso al financiero", http.MethodGet, "/api/financial/entries", entity.RoleEstoquista, http.StatusForbidden},

		// cancelar venta: admin y gerente; pasar los middlewares lleva al 404 del caso de uso
		{"gerente cancela venta", http.MethodPost, missing, entity.RoleGerente, http.StatusNotFound},
		{"vendedor no cancela venta", http.MethodPost, missing, entity.RoleVendedor, http.StatusForbidden},
		{"financeiro no cancela venta", http.MethodPost, missing, entity.RoleFinanceiro, http.StatusForbidden},

		// usuarios y dashboard de gerencia
		{"gerente lista usuarios", http.MethodGet, "/api/users", entity.RoleGerente, http.StatusOK},
		{"financeiro no lista usuarios", http.MethodGet, "/api/users", entity.RoleFinanceiro, http.StatusForbidden},

		// barrido de contratos solo admin
		{"admin ejecuta barrido", http.MethodPost, "/api/contracts/expire-sweep", entity.RoleAdmin, http.StatusOK},
		{"gerente no ejecuta barrido", http.MethodPost, "/api/contracts/expire-sweep", entity.RoleGerente, http.StatusForbidden},

		// lectura de ventas abierta a cualquier rol con el módulo activo
		{"estoquista lista ventas", http.MethodGet, "/api/sales", entity.RoleEstoquista, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.method, tt.path, tokenForRole(t, tt.role))
			assert.Equal(t, tt.status, status, body)
			if tt.status == http.StatusForbidden {
				assert.Contains(t, body, `"FORBIDDEN"`)
			}
		})
	}
}

func TestRouter_ModuloSeVerificaAntesQueElRol(t *testing.T) {
	app := buildRouterApp(t, entity.ModuleSales)

	// financiero sin contratar: ni el rol correcto entra, y el rol incorrecto ve el mismo 403 de módulo
	status, body := call(t, app, http.MethodGet, "/api/financial/entries", tokenForRole(t, entity.RoleFinanceiro))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "MODULE_DISABLED")

	status, body = call(t, app, http.MethodGet, "/api/financial/entries", tokenForRole(t, entity.RoleVendedor))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "MODULE_DISABLED")

	// contratos sin módulo: el barrido de admin también queda bloqueado
	status, body = call(t, app, http.MethodPost, "/api/contracts/expire-sweep", tokenForRole(t, entity.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "MODULE_DISABLED")

	// rutas sin módulo siguen respondiendo
	status, _ = call(t, app, http.MethodGet, "/api/users", tokenForRole(t, entity.RoleGerente))
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_SinTokenOTokenInvalido(t *testing.T) {
	app := buildRouterApp(t, entity.ModuleFinancial)

	status, body := call(t, app, http.MethodGet, "/api/financial/entries", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "MISSING_TOKEN")

	status, body = call(t, app, http.MethodGet, "/api/financial/entries", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "INVALID_TOKEN")

	other, err := pkgjwt.Generate("otro-secret", testUserID, testCompanyID, entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)
	status, _ = call(t, app, http.MethodGet, "/api/financial/entries", "Bearer "+other)
	assert.Equal(t, http.StatusUnauthorized, status)

	// rutas públicas no piden token
	status, _ = call(t, app, http.MethodGet, "/api/billing/plans", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	app := buildRouterApp(t, entity.ModuleFinancial)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, "", testIssuer, testExpMin)
	require.NoError(t, err)

	status, body := call(t, app, http.MethodGet, "/api/financial/entries", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "MISSING_ROLE")
}

func TestAuthMiddleware_CargaClaimsEnLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/whoami", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    apphttp.GetUserID(c),
			"company_id": apphttp.GetCompanyID(c),
			"role":       apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", tokenForRole(t, entity.RoleFinanceiro))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, entity.RoleFinanceiro, body["role"])
}
