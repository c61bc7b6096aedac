package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
	"github.com/jhoicas/erp-api/pkg/deadcode"
)

func newLGPDFixture(t *testing.T) (*LGPDUseCase, *memory.Store, *entity.Customer) {
	t.Helper()
	s := memory.NewStore()
	c := &entity.Customer{
		ID: "cust-1", CompanyID: "c1", Name: "Maria Souza", Document: "52998224725", DocumentKind: "cpf",
		Email: "maria@example.com", Phone: "11999990000",
		Address: entity.Address{CEP: "01001000", City: "São Paulo", UF: "SP"},
	}
	require.NoError(t, s.Customers().Create(context.Background(), c))
	return NewLGPDUseCase(s.LGPD(), s.Customers(), s.Sales(), zerolog.Nop()), s, c
}

func TestLGPD_Consentimientos(t *testing.T) {
	ctx := context.Background()
	uc, _, c := newLGPDFixture(t)

	cs, err := uc.RecordConsent(ctx, "c1", dto.RecordConsentRequest{CustomerID: c.ID, Purpose: "marketing", LegalBasis: entity.LegalBasisConsent})
	require.NoError(t, err)
	assert.True(t, cs.Active)

	_, err = uc.RecordConsent(ctx, "c2", dto.RecordConsentRequest{CustomerID: c.ID, Purpose: "marketing", LegalBasis: entity.LegalBasisConsent})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	revoked, err := uc.RevokeConsent(ctx, "c1", cs.ID)
	require.NoError(t, err)
	assert.False(t, revoked.Active)
	assert.NotNil(t, revoked.RevokedAt)

	_, err = uc.RevokeConsent(ctx, "c1", cs.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	list, err := uc.ListConsents(ctx, "c1", c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLGPD_Exportacion(t *testing.T) {
	ctx := context.Background()
	uc, _, c := newLGPDFixture(t)
	_, err := uc.RecordConsent(ctx, "c1", dto.RecordConsentRequest{CustomerID: c.ID, Purpose: "newsletter", LegalBasis: entity.LegalBasisConsent})
	require.NoError(t, err)

	req, err := uc.OpenRequest(ctx, "c1", "u1", dto.OpenDataRequestRequest{CustomerID: c.ID, Type: entity.DataRequestExport})
	require.NoError(t, err)
	assert.Equal(t, entity.DataRequestPending, req.Status)

	done, err := uc.ProcessRequest(ctx, "c1", req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DataRequestCompleted, done.Status)

	var bundle struct {
		Customer struct {
			Name     string `json:"name"`
			Document string `json:"document"`
		} `json:"customer"`
		Consents []json.RawMessage `json:"consents"`
	}
	require.NoError(t, json.Unmarshal(done.Result, &bundle))
	assert.Equal(t, "Maria Souza", bundle.Customer.Name)
	assert.Equal(t, "529.982.247-25", bundle.Customer.Document)
	assert.Len(t, bundle.Consents, 1)

	_, err = uc.ProcessRequest(ctx, "c1", req.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "una solicitud completada no se reprocesa")
}

func TestLGPD_Anonimizacion(t *testing.T) {
	ctx := context.Background()
	uc, s, c := newLGPDFixture(t)
	cs, err := uc.RecordConsent(ctx, "c1", dto.RecordConsentRequest{CustomerID: c.ID, Purpose: "marketing", LegalBasis: entity.LegalBasisConsent})
	require.NoError(t, err)

	req, err := uc.OpenRequest(ctx, "c1", "u1", dto.OpenDataRequestRequest{CustomerID: c.ID, Type: entity.DataRequestAnonymize})
	require.NoError(t, err)
	_, err = uc.ProcessRequest(ctx, "c1", req.ID)
	require.NoError(t, err)

	got, err := s.Customers().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.Anonymized)
	assert.Equal(t, anonymizedName, got.Name)
	assert.Empty(t, got.Email)
	assert.Empty(t, got.Phone)
	assert.Empty(t, got.Address.CEP)
	assert.Len(t, got.Document, 64)
	assert.NotContains(t, got.Document, "52998224725")

	consent, err := s.LGPD().GetConsent(ctx, cs.ID)
	require.NoError(t, err)
	assert.False(t, consent.Active())

	_, err = uc.RecordConsent(ctx, "c1", dto.RecordConsentRequest{CustomerID: c.ID, Purpose: "marketing", LegalBasis: entity.LegalBasisConsent})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestLGPD_Rechazo(t *testing.T) {
	ctx := context.Background()
	uc, _, c := newLGPDFixture(t)

	_, err := uc.OpenRequest(ctx, "c1", "u1", dto.OpenDataRequestRequest{CustomerID: c.ID, Type: "delete"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	req, err := uc.OpenRequest(ctx, "c1", "u1", dto.OpenDataRequestRequest{CustomerID: c.ID, Type: entity.DataRequestExport})
	require.NoError(t, err)

	_, err = uc.RejectRequest(ctx, "c1", req.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rej, err := uc.RejectRequest(ctx, "c1", req.ID, "titular não confirmou identidade")
	require.NoError(t, err)
	assert.Equal(t, entity.DataRequestRejected, rej.Status)

	_, err = uc.ProcessRequest(ctx, "c1", req.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	pending, err := uc.ListRequests(ctx, "c1", entity.DataRequestPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

type fakeScanner struct {
	report *deadcode.Report
	err    error
	opts   deadcode.Options
}

func (f *fakeScanner) Scan(_ context.Context, opts deadcode.Options) (*deadcode.Report, error) {
	f.opts = opts
	return f.report, f.err
}

func TestAudit_RunPersisteResumen(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	sc := &fakeScanner{report: &deadcode.Report{
		Root:          "/src",
		FilesScanned:  12,
		UnusedFiles:   []string{"src/legacy.ts", "src/old.ts"},
		UnusedExports: []deadcode.UnusedExport{{File: "src/util.ts", Name: "formatDate"}},
	}}
	uc := NewAuditUseCase(s.Audit(), sc, "/src", zerolog.Nop())

	run, err := uc.Run(ctx, "c1", "u1")
	require.NoError(t, err)
	assert.Equal(t, AuditRunCompleted, run.Status)
	assert.Equal(t, "/src", sc.opts.Root)
	assert.Equal(t, 12, run.FilesScanned)
	assert.Equal(t, 2, run.UnusedFiles)
	assert.Equal(t, 1, run.UnusedExports)
	assert.Contains(t, string(run.Report), "formatDate")

	hist, err := uc.History(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Nil(t, hist[0].Report)

	got, err := uc.Get(ctx, "c1", run.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Report)

	_, err = uc.Get(ctx, "c2", run.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAudit_RunFallidoQuedaRegistrado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := NewAuditUseCase(s.Audit(), &fakeScanner{err: errors.New("directorio inexistente")}, "/nope", zerolog.Nop())

	run, err := uc.Run(ctx, "c1", "u1")
	require.NoError(t, err)
	assert.Equal(t, AuditRunFailed, run.Status)
	assert.Contains(t, run.Error, "inexistente")

	_, err = NewAuditUseCase(s.Audit(), nil, "", zerolog.Nop()).Run(ctx, "c1", "u1")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
