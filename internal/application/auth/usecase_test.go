package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
	"github.com/jhoicas/erp-api/pkg/jwt"
)

const secret = "test-secret"

func setup(t *testing.T) (*auth.AuthUseCase, *memory.Store, string) {
	t.Helper()
	s := memory.NewStore()
	company := &entity.Company{ID: "11111111-1111-1111-1111-111111111111", Name: "Loja", CNPJ: "11222333000181", Status: "active"}
	require.NoError(t, s.Companies().Create(context.Background(), company))
	uc := auth.NewAuthUseCase(s.Users(), s.Companies(), s.Audit(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "erp-api"}, zerolog.Nop())
	return uc, s, company.ID
}

func TestRegisterYLogin(t *testing.T) {
	uc, s, companyID := setup(t)
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "Ana@Loja.com ", Password: "segredo123", CompanyID: companyID, Role: entity.RoleGerente})
	require.NoError(t, err)
	assert.Equal(t, "ana@loja.com", user.Email)
	assert.Equal(t, entity.RoleGerente, user.Role)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@loja.com", Password: "outro1234", CompanyID: companyID})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	resp, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@loja.com", Password: "segredo123"}, "10.0.0.1")
	require.NoError(t, err)
	userID, cid, role, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, companyID, cid)
	assert.Equal(t, entity.RoleGerente, role)
	assert.NotNil(t, resp.User.LastLoginAt)

	counts, err := s.Audit().CountByAction(ctx, companyID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, entity.AuditLoginSuccess, counts[0].Action)
}

func TestLogin_FallidoSeAudita(t *testing.T) {
	uc, s, companyID := setup(t)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@loja.com", Password: "segredo123", CompanyID: companyID})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@loja.com", Password: "errada"}, "10.0.0.2")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ninguem@loja.com", Password: "x"}, "10.0.0.2")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	logs, err := s.Audit().ListRecent(ctx, companyID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AuditLoginFailed, logs[0].Action)
	assert.Equal(t, "10.0.0.2", logs[0].IP)
}

func TestRegister_EmpresaInexistenteYRolInvalido(t *testing.T) {
	uc, _, companyID := setup(t)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.com", Password: "segredo123", CompanyID: "22222222-2222-2222-2222-222222222222"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.com", Password: "segredo123", CompanyID: companyID, Role: "root"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
