package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
	"github.com/jhoicas/erp-api/pkg/cache"
)

const (
	validCPF  = "529.982.247-25"
	validCNPJ = "11.222.333/0001-81"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newCache() *cache.Cache { return cache.New(cache.NewMemoryBackend(), zerolog.Nop()) }

// fakeCEP devuelve la dirección configurada o el error.
type fakeCEP struct {
	addr  *entity.Address
	err   error
	calls int
}

func (f *fakeCEP) Lookup(_ context.Context, cep string) (*entity.Address, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	a := *f.addr
	a.CEP = cep
	return &a, nil
}

func TestCompany_CreateValidaCNPJYDuplicado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := NewCompanyUseCase(s.Companies(), newCache())

	_, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "ACME", CNPJ: "11.222.333/0001-82"})
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)

	c, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "ACME", CNPJ: validCNPJ})
	require.NoError(t, err)
	assert.Equal(t, validCNPJ, c.CNPJ)
	assert.Equal(t, entity.TaxRegimeSimples, c.TaxRegime)

	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: "Otra", CNPJ: "11222333000181"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestModuleService_CacheSeInvalidaAlCambiarModulo(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	c := newCache()
	companies := NewCompanyUseCase(s.Companies(), c)
	modules := NewModuleService(s.Companies(), c)

	co, err := companies.Create(ctx, dto.CreateCompanyRequest{Name: "ACME", CNPJ: validCNPJ})
	require.NoError(t, err)

	ok, err := modules.HasActiveModule(ctx, co.ID, entity.ModuleSales)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = companies.SetModule(ctx, co.ID, dto.SetModuleRequest{Module: entity.ModuleSales, Active: true})
	require.NoError(t, err)

	ok, err = modules.HasActiveModule(ctx, co.ID, entity.ModuleSales)
	require.NoError(t, err)
	assert.True(t, ok, "el cache se invalida al activar el módulo")

	_, err = companies.SetModule(ctx, co.ID, dto.SetModuleRequest{Module: "desconocido", Active: true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = modules.HasActiveModule(ctx, "", entity.ModuleSales)
	assert.Error(t, err)
}

func TestCustomer_CreateDocumentoYDuplicado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := NewCustomerUseCase(s.Customers(), nil, zerolog.Nop())

	_, err := uc.Create(ctx, "c1", dto.CreateCustomerRequest{Name: "João", Document: "529.982.247-26"})
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)

	c, err := uc.Create(ctx, "c1", dto.CreateCustomerRequest{Name: "João da Silva", Document: validCPF})
	require.NoError(t, err)
	assert.Equal(t, validCPF, c.Document)
	assert.Equal(t, "cpf", c.DocumentKind)

	_, err = uc.Create(ctx, "c1", dto.CreateCustomerRequest{Name: "Outro", Document: "52998224725"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// el mismo documento en otra empresa es válido
	_, err = uc.Create(ctx, "c2", dto.CreateCustomerRequest{Name: "João", Document: validCPF})
	assert.NoError(t, err)

	dup, err := uc.CheckDuplicate(ctx, "c1", "52998224725")
	require.NoError(t, err)
	assert.True(t, dup.Exists)
	assert.Equal(t, c.ID, dup.CustomerID)

	_, err = uc.GetByID(ctx, "c2", c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "aislamiento por empresa")
}

func TestCustomer_BusquedaSinAcentos(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := NewCustomerUseCase(s.Customers(), nil, zerolog.Nop())
	_, err := uc.Create(ctx, "c1", dto.CreateCustomerRequest{Name: "José Conceição", Document: validCPF})
	require.NoError(t, err)

	res, err := uc.List(ctx, "c1", "CONCEICAO", 10, 0)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
}

func TestCustomer_ValidateDocument(t *testing.T) {
	uc := NewCustomerUseCase(nil, nil, zerolog.Nop())

	r := uc.ValidateDocument("11222333000181")
	assert.True(t, r.Valid)
	assert.Equal(t, "cnpj", r.Kind)
	assert.Equal(t, validCNPJ, r.Formatted)

	r = uc.ValidateDocument("123")
	assert.False(t, r.Valid)
	assert.NotEmpty(t, r.Error)
}

func TestCustomer_DireccionDesdeCEP(t *testing.T) {
	ctx := context.Background()
	found := &entity.Address{Street: "Praça da Sé", District: "Sé", City: "São Paulo", UF: "SP", IBGECode: "3550308"}

	t.Run("completa la dirección", func(t *testing.T) {
		cep := &fakeCEP{addr: found}
		uc := NewCustomerUseCase(memory.NewStore().Customers(), cep, zerolog.Nop())
		c, err := uc.Create(ctx, "c1", dto.CreateCustomerRequest{
			Name: "Ana", Document: validCPF, LookupCEP: true,
			Address: dto.AddressDTO{CEP: "01001-000", Number: "100"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, cep.calls)
		assert.Equal(t, "01001000", c.Address.CEP)
		assert.Equal(t, "São Paulo", c.Address.City)
		assert.Equal(t, "100", c.Address.Number)
	})

	t.Run("CEP inexistente", func(t *testing.T) {
		uc := NewCustomerUseCase(memory.NewStore().Customers(), &fakeCEP{err: domain.ErrNotFound}, zerolog.Nop())
		_, err := uc.Create(ctx, "c1", dto.CreateCustomerRequest{
			Name: "Ana", Document: validCPF, LookupCEP: true, Address: dto.AddressDTO{CEP: "99999-999"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("proveedor caído conserva lo informado", func(t *testing.T) {
		uc := NewCustomerUseCase(memory.NewStore().Customers(), &fakeCEP{err: domain.ErrProviderUnavailable}, zerolog.Nop())
		c, err := uc.Create(ctx, "c1", dto.CreateCustomerRequest{
			Name: "Ana", Document: validCPF, LookupCEP: true,
			Address: dto.AddressDTO{CEP: "01001000", City: "São Paulo", UF: "sp"},
		})
		require.NoError(t, err)
		assert.Equal(t, "São Paulo", c.Address.City)
		assert.Equal(t, "SP", c.Address.UF)
	})
}

func TestFinancial_CicloDeVida(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := NewFinancialUseCase(s.Financial(), newCache())
	ref := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return ref }

	_, err := uc.Create(ctx, "c1", dto.CreateEntryRequest{Type: entity.EntryReceivable, Amount: d("0"), DueDate: ref})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	overdue, err := uc.Create(ctx, "c1", dto.CreateEntryRequest{
		Type: entity.EntryReceivable, Description: "Mensalidade", Amount: d("150.456"),
		DueDate: ref.AddDate(0, 0, -3),
	})
	require.NoError(t, err)
	assert.True(t, d("150.46").Equal(overdue.Amount))
	assert.True(t, overdue.Overdue)

	paid, err := uc.MarkPaid(ctx, "c1", overdue.ID, dto.MarkPaidRequest{PaymentMethod: entity.PaymentPix})
	require.NoError(t, err)
	assert.Equal(t, entity.EntryStatusPaid, paid.Status)
	assert.False(t, paid.Overdue)

	_, err = uc.Cancel(ctx, "c1", overdue.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.MarkPaid(ctx, "c2", overdue.ID, dto.MarkPaidRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinancial_ListYFechas(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := NewFinancialUseCase(s.Financial(), newCache())
	due := time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC)
	_, err := uc.Create(ctx, "c1", dto.CreateEntryRequest{Type: entity.EntryPayable, Description: "Aluguel", Amount: d("900"), DueDate: due})
	require.NoError(t, err)

	res, err := uc.List(ctx, "c1", dto.FinancialFilterRequest{Type: entity.EntryPayable, DueFrom: "2026-11-01", DueTo: "2026-11-30"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 20, res.Page.Limit)

	_, err = uc.List(ctx, "c1", dto.FinancialFilterRequest{DueFrom: "10/11/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CashFlow(ctx, "c1", "2026-11-30", "2026-11-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	cf, err := uc.CashFlow(ctx, "c1", "2026-11-01", "2026-11-30")
	require.NoError(t, err)
	assert.True(t, d("900").Equal(cf.OpenPayable))
}

func newContractFixture(t *testing.T, today time.Time) (*ContractUseCase, string) {
	t.Helper()
	s := memory.NewStore()
	cust := &entity.Customer{ID: "cust-1", CompanyID: "c1", Name: "Cliente", Document: "52998224725"}
	require.NoError(t, s.Customers().Create(context.Background(), cust))
	uc := NewContractUseCase(s.Contracts(), s.Customers(), zerolog.Nop())
	uc.now = func() time.Time { return today }
	return uc, cust.ID
}

func TestContract_TransicionesYRenovacion(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	uc, custID := newContractFixture(t, today)

	_, err := uc.Create(ctx, "c1", dto.CreateContractRequest{CustomerID: custID, Number: "1", Title: "Suporte",
		StartDate: today, EndDate: today})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := uc.Create(ctx, "c1", dto.CreateContractRequest{CustomerID: custID, Number: "1", Title: "Suporte",
		MonthlyValue: d("300"), StartDate: today, EndDate: today.AddDate(0, 0, 10)})
	require.NoError(t, err)
	assert.Equal(t, entity.ContractStatusDraft, c.Status)

	_, err = uc.Renew(ctx, "c1", c.ID, 12)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "solo contratos activos se renuevan")

	_, err = uc.Suspend(ctx, "c1", c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.Activate(ctx, "c1", c.ID)
	require.NoError(t, err)

	expiring, err := uc.ListExpiring(ctx, "c1", 30)
	require.NoError(t, err)
	assert.Len(t, expiring, 1)

	renewed, err := uc.Renew(ctx, "c1", c.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, today.AddDate(1, 0, 10), renewed.EndDate)

	term, err := uc.Terminate(ctx, "c1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ContractStatusTerminated, term.Status)
	_, err = uc.Activate(ctx, "c1", c.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestContract_ExpireSweep(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	uc, custID := newContractFixture(t, today)
	start := today.AddDate(-3, 0, 0)

	mk := func(number string, end time.Time, auto bool) string {
		c, err := uc.Create(ctx, "c1", dto.CreateContractRequest{CustomerID: custID, Number: number, Title: number,
			StartDate: start, EndDate: end, AutoRenew: auto})
		require.NoError(t, err)
		_, err = uc.Activate(ctx, "c1", c.ID)
		require.NoError(t, err)
		return c.ID
	}
	expired := mk("vencido", today.AddDate(0, -1, 0), false)
	auto := mk("auto", today.AddDate(-1, -2, 0), true)
	current := mk("vigente", today.AddDate(0, 2, 0), false)

	res, err := uc.ExpireSweep(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Expired)
	assert.Equal(t, 1, res.Renewed)

	e, _ := uc.GetByID(ctx, "c1", expired)
	assert.Equal(t, entity.ContractStatusExpired, e.Status)
	a, _ := uc.GetByID(ctx, "c1", auto)
	assert.Equal(t, entity.ContractStatusActive, a.Status)
	assert.Equal(t, today.AddDate(0, 10, 0).Truncate(24*time.Hour), a.EndDate.Truncate(24*time.Hour))
	cur, _ := uc.GetByID(ctx, "c1", current)
	assert.Equal(t, entity.ContractStatusActive, cur.Status)
}

func TestAddMonths_FinDeMes(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"31 de enero a febrero", day(2026, 1, 31), 1, day(2026, 2, 28)},
		{"31 de enero a febrero bisiesto", day(2028, 1, 31), 1, day(2028, 2, 29)},
		{"29 de febrero más un año", day(2028, 2, 29), 12, day(2029, 2, 28)},
		{"29 de febrero más cuatro años", day(2028, 2, 29), 48, day(2032, 2, 29)},
		{"31 de diciembre cruza el año", day(2026, 12, 31), 2, day(2027, 2, 28)},
		{"día común", day(2026, 10, 19), 12, day(2027, 10, 19)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, addMonths(tt.from, tt.n))
		})
	}
}

func TestContract_RenovacionAFinDeMes(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	uc, custID := newContractFixture(t, today)
	c, err := uc.Create(ctx, "c1", dto.CreateContractRequest{CustomerID: custID, Number: "fm", Title: "Fim de mês",
		StartDate: today, EndDate: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	_, err = uc.Activate(ctx, "c1", c.ID)
	require.NoError(t, err)

	renewed, err := uc.Renew(ctx, "c1", c.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), renewed.EndDate)
}

func TestContract_ExpireSweepDesde29DeFebrero(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	uc, custID := newContractFixture(t, today)
	c, err := uc.Create(ctx, "c1", dto.CreateContractRequest{CustomerID: custID, Number: "bis", Title: "Bissexto",
		StartDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), AutoRenew: true})
	require.NoError(t, err)
	_, err = uc.Activate(ctx, "c1", c.ID)
	require.NoError(t, err)

	res, err := uc.ExpireSweep(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Renewed)
	got, err := uc.GetByID(ctx, "c1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC), got.EndDate)
}
