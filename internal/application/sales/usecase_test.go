package sales_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/application/sales"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
	"github.com/jhoicas/erp-api/pkg/cache"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeReceipts struct{ data ports.ReceiptData }

func (f *fakeReceipts) RenderSaleReceipt(_ context.Context, data ports.ReceiptData) ([]byte, error) {
	f.data = data
	return []byte("%PDF-1.4"), nil
}

type fixture struct {
	store    *memory.Store
	uc       *sales.UseCase
	receipts *fakeReceipts
	p        *entity.Product
	w        *entity.Warehouse
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Companies().Create(ctx, &entity.Company{ID: "c1", Name: "Loja Teste", CNPJ: "11222333000181"}))
	p := &entity.Product{CompanyID: "c1", SKU: "CAF-500", Name: "Café 500g", Unit: "UN", Price: d("25"), Cost: d("10"), Active: true}
	require.NoError(t, s.Products().Create(ctx, p))
	w := &entity.Warehouse{CompanyID: "c1", Name: "Loja"}
	require.NoError(t, s.Warehouses().Create(ctx, w))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: p.ID, WarehouseID: w.ID, Quantity: d("10")}))

	rec := &fakeReceipts{}
	uc := sales.NewUseCase(memory.NewTxRunner(s), s.Sales(), s.Products(), s.Warehouses(), s.Customers(),
		s.Companies(), s.FiscalInvoices(), rec, cache.New(cache.NewMemoryBackend(), zerolog.Nop()), zerolog.Nop())
	return &fixture{store: s, uc: uc, receipts: rec, p: p, w: w}
}

func (f *fixture) stock(t *testing.T) decimal.Decimal {
	t.Helper()
	st, err := f.store.Stock().Get(context.Background(), f.p.ID, f.w.ID)
	require.NoError(t, err)
	return st.Quantity
}

func (f *fixture) entries(t *testing.T, saleID string) []*entity.FinancialEntry {
	t.Helper()
	list, err := f.store.Financial().ListBySale(context.Background(), saleID)
	require.NoError(t, err)
	return list
}

func (f *fixture) sale(t *testing.T, qty, payment string) *dto.SaleResponse {
	t.Helper()
	res, err := f.uc.Create(context.Background(), "c1", "u1", dto.CreateSaleRequest{
		WarehouseID: f.w.ID, PaymentMethod: payment, Discount: d("5"),
		Items: []dto.SaleItemRequest{{ProductID: f.p.ID, Quantity: d(qty)}},
	})
	require.NoError(t, err)
	return res
}

func TestCreate_DescuentaStockYGeneraCobro(t *testing.T) {
	f := newFixture(t)
	res := f.sale(t, "3", entity.PaymentPix)

	assert.Equal(t, int64(1), res.Number)
	assert.True(t, d("75").Equal(res.Subtotal))
	assert.True(t, d("70").Equal(res.Total))
	assert.True(t, d("7").Equal(f.stock(t)))

	entries := f.entries(t, res.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.EntryReceivable, entries[0].Type)
	assert.Equal(t, entity.EntryStatusPaid, entries[0].Status)
	assert.True(t, d("70").Equal(entries[0].Amount))

	second := f.sale(t, "1", entity.PaymentBoleto)
	assert.Equal(t, int64(2), second.Number)
	boleto := f.entries(t, second.ID)
	require.Len(t, boleto, 1)
	assert.Equal(t, entity.EntryStatusOpen, boleto[0].Status)
	assert.Nil(t, boleto[0].PaidAt)
}

func TestCreate_StockInsuficienteNoPersisteNada(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), "c1", "u1", dto.CreateSaleRequest{
		WarehouseID: f.w.ID, PaymentMethod: entity.PaymentCash,
		Items: []dto.SaleItemRequest{{ProductID: f.p.ID, Quantity: d("11")}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, d("10").Equal(f.stock(t)))

	list, err := f.store.Sales().List(context.Background(), "c1", repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	neg := d("-1")
	cases := []struct {
		name string
		in   dto.CreateSaleRequest
		err  error
	}{
		{"sin líneas", dto.CreateSaleRequest{WarehouseID: f.w.ID, PaymentMethod: entity.PaymentPix}, domain.ErrInvalidInput},
		{"forma de pago", dto.CreateSaleRequest{WarehouseID: f.w.ID, PaymentMethod: "cheque",
			Items: []dto.SaleItemRequest{{ProductID: f.p.ID, Quantity: d("1")}}}, domain.ErrInvalidInput},
		{"precio negativo", dto.CreateSaleRequest{WarehouseID: f.w.ID, PaymentMethod: entity.PaymentPix,
			Items: []dto.SaleItemRequest{{ProductID: f.p.ID, Quantity: d("1"), UnitPrice: &neg}}}, domain.ErrInvalidInput},
		{"descuento mayor que subtotal", dto.CreateSaleRequest{WarehouseID: f.w.ID, PaymentMethod: entity.PaymentPix, Discount: d("26"),
			Items: []dto.SaleItemRequest{{ProductID: f.p.ID, Quantity: d("1")}}}, domain.ErrInvalidInput},
		{"depósito de otra empresa", dto.CreateSaleRequest{WarehouseID: "otro", PaymentMethod: entity.PaymentPix,
			Items: []dto.SaleItemRequest{{ProductID: f.p.ID, Quantity: d("1")}}}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(context.Background(), "c1", "u1", tc.in)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestCancel_DevuelveStockYEstorna(t *testing.T) {
	f := newFixture(t)
	paid := f.sale(t, "2", entity.PaymentCard)
	open := f.sale(t, "1", entity.PaymentBoleto)
	assert.True(t, d("7").Equal(f.stock(t)))

	res, err := f.uc.Cancel(context.Background(), "c1", "u1", paid.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelled, res.Status)
	assert.NotNil(t, res.CancelledAt)
	assert.True(t, d("9").Equal(f.stock(t)))

	entries := f.entries(t, paid.ID)
	require.Len(t, entries, 2)
	var refund *entity.FinancialEntry
	for _, e := range entries {
		if e.Type == entity.EntryPayable {
			refund = e
		}
	}
	require.NotNil(t, refund)
	assert.Equal(t, entity.EntryStatusOpen, refund.Status)
	assert.True(t, d("45").Equal(refund.Amount))

	_, err = f.uc.Cancel(context.Background(), "c1", "u1", open.ID)
	require.NoError(t, err)
	boleto := f.entries(t, open.ID)
	require.Len(t, boleto, 1)
	assert.Equal(t, entity.EntryStatusCancelled, boleto[0].Status)

	_, err = f.uc.Cancel(context.Background(), "c1", "u1", paid.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_ConNFeActivaEsConflicto(t *testing.T) {
	f := newFixture(t)
	s := f.sale(t, "1", entity.PaymentPix)
	require.NoError(t, f.store.FiscalInvoices().Create(context.Background(), &entity.FiscalInvoice{
		CompanyID: "c1", SaleID: s.ID, Status: entity.NFeStatusAuthorized, CreatedAt: time.Now(),
	}))
	_, err := f.uc.Cancel(context.Background(), "c1", "u1", s.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.store.Sales().GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusConfirmed, got.Status, "el conflicto revierte el cambio de estado")
	assert.True(t, d("9").Equal(f.stock(t)))
}

func TestCancel_Concurrente(t *testing.T) {
	f := newFixture(t)
	s := f.sale(t, "2", entity.PaymentCard)
	assert.True(t, d("8").Equal(f.stock(t)))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Cancel(context.Background(), "c1", "u1", s.ID)
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			failed++
		}
	}
	assert.Equal(t, 1, failed, "solo una cancelación gana")
	assert.True(t, d("10").Equal(f.stock(t)), "el stock vuelve una sola vez")
	assert.Len(t, f.entries(t, s.ID), 2, "un cobro y un único estorno")
}

// staleSales devuelve la venta tal como estaba al construirse, sin ver cambios posteriores.
type staleSales struct {
	*memory.SaleRepo
	stale *entity.Sale
}

func (s *staleSales) GetByID(context.Context, string) (*entity.Sale, error) {
	cp := *s.stale
	return &cp, nil
}

func TestCancel_LecturaDesactualizadaNoDevuelveStockDosVeces(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.sale(t, "2", entity.PaymentCard)
	snapshot, err := f.store.Sales().GetByID(ctx, s.ID)
	require.NoError(t, err)

	_, err = f.uc.Cancel(ctx, "c1", "u1", s.ID)
	require.NoError(t, err)

	stale := sales.NewUseCase(memory.NewTxRunner(f.store), &staleSales{SaleRepo: f.store.Sales(), stale: snapshot},
		f.store.Products(), f.store.Warehouses(), f.store.Customers(), f.store.Companies(), f.store.FiscalInvoices(),
		f.receipts, cache.New(cache.NewMemoryBackend(), zerolog.Nop()), zerolog.Nop())
	_, err = stale.Cancel(ctx, "c1", "u1", s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.True(t, d("10").Equal(f.stock(t)))
	assert.Len(t, f.entries(t, s.ID), 2)
}

func TestImportOrder_Idempotente(t *testing.T) {
	f := newFixture(t)
	order := dto.MarketplaceOrderRequest{
		Channel: entity.ChannelMercadoLivre, ExternalID: "ML-2000001", WarehouseID: f.w.ID,
		Customer: dto.MarketplaceCustomer{Name: "Pedro Álvares", Document: "529.982.247-25"},
		Items:    []dto.MarketplaceItem{{SKU: "CAF-500", Quantity: d("2"), UnitPrice: d("22.50")}},
	}
	first, err := f.uc.ImportOrder(context.Background(), "c1", "u1", order)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, entity.ChannelMercadoLivre, first.Sale.Channel)
	assert.Equal(t, entity.PaymentPix, first.Sale.PaymentMethod)
	assert.True(t, d("45").Equal(first.Sale.Total))
	assert.NotEmpty(t, first.Sale.CustomerID)

	again, err := f.uc.ImportOrder(context.Background(), "c1", "u1", order)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, first.Sale.ID, again.Sale.ID)
	assert.True(t, d("8").Equal(f.stock(t)), "el pedido repetido no descuenta stock")

	c, err := f.store.Customers().GetByDocument(context.Background(), "c1", "52998224725")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "pedro alvares", c.SearchKey)
}

func TestImportOrder_SKUDesconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.ImportOrder(context.Background(), "c1", "u1", dto.MarketplaceOrderRequest{
		Channel: entity.ChannelShopee, ExternalID: "SH-1", WarehouseID: f.w.ID,
		Customer: dto.MarketplaceCustomer{Name: "Ana", Document: "52998224725"},
		Items:    []dto.MarketplaceItem{{SKU: "NAO-EXISTE", Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.ImportOrder(context.Background(), "c1", "u1", dto.MarketplaceOrderRequest{
		Channel: entity.ChannelPDV, ExternalID: "X", WarehouseID: f.w.ID,
		Items: []dto.MarketplaceItem{{SKU: "CAF-500", Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	s := f.sale(t, "1", entity.PaymentCash)
	pdf, name, err := f.uc.Receipt(context.Background(), "c1", s.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "venda-000001.pdf", name)
	assert.Equal(t, "Loja Teste", f.receipts.data.Company.Name)
	assert.Contains(t, f.receipts.data.Products, f.p.ID)
	assert.Nil(t, f.receipts.data.Invoice)

	_, _, err = f.uc.Receipt(context.Background(), "c2", s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
