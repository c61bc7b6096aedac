package fiscal_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/fiscal"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
	"github.com/jhoicas/erp-api/internal/infrastructure/storage"
	"github.com/jhoicas/erp-api/pkg/cache"
)

const accessKey = "35261011222333000181550010000012341123456787"

const procXML = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe><infNFe Id="NFe` + accessKey + `" versao="4.00"><ide><serie>1</serie><nNF>1234</nNF></ide></infNFe></NFe>
  <protNFe versao="4.00"><infProt>
    <chNFe>` + accessKey + `</chNFe>
    <dhRecbto>2026-10-05T10:15:00-03:00</dhRecbto>
    <nProt>135260000012345</nProt>
    <cStat>100</cStat>
    <xMotivo>Autorizado o uso da NF-e</xMotivo>
  </infProt></protNFe>
</nfeProc>`

// fakeProvider responde con el estado configurado.
type fakeProvider struct {
	issue     *ports.NFeProviderStatus
	get       *ports.NFeProviderStatus
	cancel    *ports.NFeProviderStatus
	issueErr  error
	xml       []byte
	issued    []ports.NFeIssueRequest
	cancelled string
}

func (f *fakeProvider) Issue(_ context.Context, _ string, req ports.NFeIssueRequest) (*ports.NFeProviderStatus, error) {
	f.issued = append(f.issued, req)
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	st := *f.issue
	return &st, nil
}

func (f *fakeProvider) Get(context.Context, string, string) (*ports.NFeProviderStatus, error) {
	st := *f.get
	return &st, nil
}

func (f *fakeProvider) DownloadXML(context.Context, string, string) ([]byte, error) {
	return f.xml, nil
}

func (f *fakeProvider) Cancel(_ context.Context, _, _, justification string) (*ports.NFeProviderStatus, error) {
	f.cancelled = justification
	st := *f.cancel
	return &st, nil
}

type fixture struct {
	store    *memory.Store
	provider *fakeProvider
	objects  *storage.MemoryStorage
	uc       *fiscal.UseCase
	saleID   string
}

func newFixture(t *testing.T, providerID string) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Companies().Create(ctx, &entity.Company{ID: "c1", Name: "Loja", CNPJ: "11222333000181", NFeProviderID: providerID}))
	p := &entity.Product{ID: "p1", CompanyID: "c1", SKU: "CAF", Name: "Café", NCM: "09012100", Price: decimal.NewFromInt(25), Active: true}
	require.NoError(t, s.Products().Create(ctx, p))
	sale := &entity.Sale{ID: "s1", CompanyID: "c1", Status: entity.SaleStatusConfirmed, Channel: entity.ChannelPDV,
		Items: []entity.SaleItem{{ProductID: "p1", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(25)}}}
	sale.ComputeTotals()
	require.NoError(t, s.Sales().Create(ctx, sale))

	prov := &fakeProvider{
		issue:  &ports.NFeProviderStatus{ProviderID: "prov-1", Status: entity.NFeStatusProcessing},
		get:    &ports.NFeProviderStatus{ProviderID: "prov-1", Status: entity.NFeStatusAuthorized, AccessKey: accessKey, Protocol: "135260000012345"},
		cancel: &ports.NFeProviderStatus{ProviderID: "prov-1", Status: entity.NFeStatusCancelled},
		xml:    []byte(procXML),
	}
	objects := storage.NewMemoryStorage()
	uc := fiscal.NewUseCase(memory.NewTxRunner(s), s.FiscalInvoices(), s.Sales(), s.Companies(), s.Customers(), s.Products(), prov, objects,
		cache.New(cache.NewMemoryBackend(), zerolog.Nop()), zerolog.Nop())
	return &fixture{store: s, provider: prov, objects: objects, uc: uc, saleID: sale.ID}
}

func TestIssue_RefreshArchivaXML(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "prov-company")

	inv, err := f.uc.Issue(ctx, "c1", f.saleID)
	require.NoError(t, err)
	assert.Equal(t, entity.NFeStatusProcessing, inv.Status)
	require.Len(t, f.provider.issued, 1)
	assert.Equal(t, inv.ID, f.provider.issued[0].InvoiceID)
	assert.Contains(t, f.provider.issued[0].Products, "p1")

	_, err = f.uc.Issue(ctx, "c1", f.saleID)
	assert.ErrorIs(t, err, domain.ErrConflict, "una sola NF-e activa por venta")

	inv, err = f.uc.Refresh(ctx, "c1", inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NFeStatusAuthorized, inv.Status)
	assert.Equal(t, accessKey, inv.AccessKey)
	assert.Equal(t, "1234", inv.Number)
	assert.Len(t, inv.XMLDigest, 64)
	require.NotNil(t, inv.IssuedAt)

	data, name, err := f.uc.DownloadXML(ctx, "c1", inv.ID)
	require.NoError(t, err)
	assert.Equal(t, procXML, string(data))
	assert.Equal(t, accessKey+"-nfe.xml", name)

	stored, err := f.objects.Get(ctx, fiscal.XMLKey("c1", accessKey))
	require.NoError(t, err)
	assert.NotEmpty(t, stored)
}

func TestIssue_SinProveedorConfigurado(t *testing.T) {
	f := newFixture(t, "")
	_, err := f.uc.Issue(context.Background(), "c1", f.saleID)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, f.provider.issued)
}

func TestIssue_ErrorDelProveedorPermiteReemitir(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "prov-company")
	f.provider.issueErr = fmt.Errorf("%w: nfeio: 503 <html>upstream connect error</html>", domain.ErrProviderUnavailable)

	_, err := f.uc.Issue(ctx, "c1", f.saleID)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	list, err := f.uc.List(ctx, "c1", entity.NFeStatusError, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "emissor de NF-e indisponível; tente novamente", list[0].Message)
	assert.NotContains(t, list[0].Message, "nfeio", "el cuerpo del proveedor no se guarda en la nota")

	f.provider.issueErr = nil
	_, err = f.uc.Issue(ctx, "c1", f.saleID)
	assert.NoError(t, err)
}

func TestIssue_VentaCancelada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "prov-company")
	sale, err := f.store.Sales().GetByID(ctx, f.saleID)
	require.NoError(t, err)
	sale.Status = entity.SaleStatusCancelled
	require.NoError(t, f.store.Sales().UpdateStatus(ctx, sale, entity.SaleStatusConfirmed))

	_, err = f.uc.Issue(ctx, "c1", f.saleID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_Justificativa(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "prov-company")
	inv, err := f.uc.Issue(ctx, "c1", f.saleID)
	require.NoError(t, err)

	_, err = f.uc.Cancel(ctx, "c1", inv.ID, "erro de digitação no valor")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "solo una NF-e autorizada se cancela")

	_, err = f.uc.Refresh(ctx, "c1", inv.ID)
	require.NoError(t, err)

	_, err = f.uc.Cancel(ctx, "c1", inv.ID, "curta")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Cancel(ctx, "c1", inv.ID, strings.Repeat("x", 256))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// 15 caracteres con acentos cuentan como runas
	just := "não é válida çã"
	out, err := f.uc.Cancel(ctx, "c1", inv.ID, just)
	require.NoError(t, err)
	assert.Equal(t, entity.NFeStatusCancelled, out.Status)
	assert.NotNil(t, out.CancelledAt)
	assert.Equal(t, just, f.provider.cancelled)
}

func TestRefresh_ChaveDeOtroCNPJNoSeArchiva(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "prov-company")
	company, err := f.store.Companies().GetByID(ctx, "c1")
	require.NoError(t, err)
	company.CNPJ = "11444777000161"
	require.NoError(t, f.store.Companies().Update(ctx, company))

	inv, err := f.uc.Issue(ctx, "c1", f.saleID)
	require.NoError(t, err)
	inv, err = f.uc.Refresh(ctx, "c1", inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NFeStatusAuthorized, inv.Status)
	assert.Empty(t, inv.XMLDigest, "XML de otro emisor no se archiva")

	_, err = f.objects.Get(ctx, fiscal.XMLKey("c1", accessKey))
	assert.Error(t, err)
}

func TestIssue_VentaCanceladaDentroDeLaTransaccion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "prov-company")
	// GetByID fuera de la transacción ve la venta confirmada; el bloqueo ve la cancelada.
	sales := &staleSales{SaleRepo: f.store.Sales()}
	uc := fiscal.NewUseCase(memory.NewTxRunner(f.store), f.store.FiscalInvoices(), sales, f.store.Companies(),
		f.store.Customers(), f.store.Products(), f.provider, f.objects, cache.New(cache.NewMemoryBackend(), zerolog.Nop()), zerolog.Nop())
	sales.stale, _ = f.store.Sales().GetByID(ctx, f.saleID)

	cur, err := f.store.Sales().GetByID(ctx, f.saleID)
	require.NoError(t, err)
	cur.Status = entity.SaleStatusCancelled
	require.NoError(t, f.store.Sales().UpdateStatus(ctx, cur, entity.SaleStatusConfirmed))

	_, err = uc.Issue(ctx, "c1", f.saleID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Empty(t, f.provider.issued)
	list, err := f.store.FiscalInvoices().ListBySale(ctx, f.saleID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// staleSales devuelve una copia vieja de la venta en lecturas sin bloqueo.
type staleSales struct {
	*memory.SaleRepo
	stale *entity.Sale
}

func (s *staleSales) GetByID(context.Context, string) (*entity.Sale, error) {
	cp := *s.stale
	return &cp, nil
}
