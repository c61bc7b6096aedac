package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/erp-api/internal/interfaces/http"
)

type notFoundCEP struct{}

func (notFoundCEP) Lookup(context.Context, string) (*entity.Address, error) {
	return nil, domain.ErrNotFound
}

type functionResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func buildFunctionsApp(t *testing.T) (*fiber.App, *usecase.CustomerUseCase) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Users().Create(context.Background(), &entity.User{
		ID: testUserID, CompanyID: testCompanyID, Email: "ana@empresa.com.br", Name: "Ana",
		Role: entity.RoleAdmin, Status: entity.UserStatusActive,
	}))
	customers := usecase.NewCustomerUseCase(store.Customers(), notFoundCEP{}, zerolog.Nop())
	audit := usecase.NewAuditUseCase(store.Audit(), nil, "", zerolog.Nop())
	users := usecase.NewUserUseCase(store.Users())

	h := apphttp.NewFunctionsHandler(customers, audit, users, zerolog.Nop())
	app := fiber.New()
	app.Post("/functions/v1/:name", apphttp.AuthMiddleware(testJWTSecret), h.Invoke)
	return app, customers
}

func invoke(t *testing.T, app *fiber.App, role, name string, body map[string]any) (int, functionResult) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/"+name, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out functionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestFunctions_FuncionYAccionDesconocidas(t *testing.T) {
	app, _ := buildFunctionsApp(t)

	status, out := invoke(t, app, "admin", "no-existe", map[string]any{"action": "get"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, out.Success)
	assert.Equal(t, "FUNCTION_NOT_FOUND", out.Code)

	status, out = invoke(t, app, "admin", "customer-validation", map[string]any{"action": "borrar"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, out.Success)
	assert.Equal(t, "UNKNOWN_ACTION", out.Code)
}

func TestFunctions_CustomerValidation(t *testing.T) {
	app, customers := buildFunctionsApp(t)

	status, out := invoke(t, app, "vendedor", "customer-validation", map[string]any{"action": "validate_document", "document": "11.222.333/0001-81"})
	require.Equal(t, http.StatusOK, status)
	require.True(t, out.Success)
	var v dto.DocumentValidationResponse
	require.NoError(t, json.Unmarshal(out.Data, &v))
	assert.True(t, v.Valid)
	assert.Equal(t, "cnpj", v.Kind)
	assert.Equal(t, "11222333000181", v.Normalized)

	created, err := customers.Create(context.Background(), testCompanyID, dto.CreateCustomerRequest{Name: "João", Document: "529.982.247-25"})
	require.NoError(t, err)

	status, out = invoke(t, app, "vendedor", "customer-validation", map[string]any{"action": "check_duplicate", "document": "52998224725"})
	require.Equal(t, http.StatusOK, status)
	var dup dto.DuplicateCheckResponse
	require.NoError(t, json.Unmarshal(out.Data, &dup))
	assert.True(t, dup.Exists)
	assert.Equal(t, created.ID, dup.CustomerID)

	status, out = invoke(t, app, "vendedor", "customer-validation", map[string]any{"action": "check_duplicate", "document": "123"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_DOCUMENT", out.Code)
	assert.Equal(t, "CPF ou CNPJ inválido: CPF deve ter 11 dígitos e CNPJ 14 caracteres", out.Error)
	assert.NotContains(t, out.Error, "brdocs")

	status, out = invoke(t, app, "vendedor", "customer-validation", map[string]any{"action": "validate_document", "document": "11.222.333/0001-82"})
	require.Equal(t, http.StatusOK, status)
	var bad dto.DocumentValidationResponse
	require.NoError(t, json.Unmarshal(out.Data, &bad))
	assert.False(t, bad.Valid)
	assert.Equal(t, "dígitos verificadores não conferem", bad.Error)

	status, out = invoke(t, app, "vendedor", "customer-validation", map[string]any{"action": "lookup_cep", "cep": "99999-999"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, out.Success)
}

func TestFunctions_ProfileSync(t *testing.T) {
	app, _ := buildFunctionsApp(t)

	status, out := invoke(t, app, "admin", "profile-sync", map[string]any{"action": "update", "name": "Ana Souza", "phone": "11999990000"})
	require.Equal(t, http.StatusOK, status, out.Error)
	var u dto.UserResponse
	require.NoError(t, json.Unmarshal(out.Data, &u))
	assert.Equal(t, "Ana Souza", u.Name)
	assert.Equal(t, "ana@empresa.com.br", u.Email)

	status, out = invoke(t, app, "admin", "profile-sync", map[string]any{"action": "get"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(out.Data, &u))
	assert.Equal(t, "11999990000", u.Phone)

	status, out = invoke(t, app, "admin", "profile-sync", map[string]any{"action": "update", "avatar_url": "no es url"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out.Code)
}

func TestFunctions_AuditoriaRequiereAdmin(t *testing.T) {
	app, _ := buildFunctionsApp(t)

	status, out := invoke(t, app, "vendedor", "executar-auditoria", map[string]any{"action": "run"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.False(t, out.Success)

	// Sin directorio configurado el escaneo no corre.
	status, out = invoke(t, app, "admin", "executar-auditoria", map[string]any{"action": "run"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "NOT_CONFIGURED", out.Code)

	status, out = invoke(t, app, "admin", "executar-auditoria", map[string]any{"action": "history"})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)
}
