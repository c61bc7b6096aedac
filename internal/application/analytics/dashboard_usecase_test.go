package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/application/analytics"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/infrastructure/memory"
	"github.com/jhoicas/erp-api/pkg/cache"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newDashboard(s *memory.Store) (*analytics.DashboardUseCase, *cache.Cache) {
	c := cache.New(cache.NewMemoryBackend(), zerolog.Nop())
	return analytics.NewDashboardUseCase(s.Dashboard(), s.Stock(), s.Financial(), s.Audit(), c), c
}

func addSale(t *testing.T, s *memory.Store, p *entity.Product, qty, total string) {
	t.Helper()
	require.NoError(t, s.Sales().Create(context.Background(), &entity.Sale{
		CompanyID: "c1", Status: entity.SaleStatusConfirmed, Channel: entity.ChannelPDV,
		Total: d(total), CreatedAt: time.Now(),
		Items: []entity.SaleItem{{ProductID: p.ID, Quantity: d(qty), Total: d(total)}},
	}))
}

func TestAdmin_AgregaYCachea(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	cafe := &entity.Product{CompanyID: "c1", SKU: "CAF", Name: "Café", Active: true, MinStock: d("5")}
	cha := &entity.Product{CompanyID: "c1", SKU: "CHA", Name: "Chá", Active: true}
	require.NoError(t, s.Products().Create(ctx, cafe))
	require.NoError(t, s.Products().Create(ctx, cha))

	addSale(t, s, cafe, "2", "50")
	addSale(t, s, cha, "1", "80")
	require.NoError(t, s.Financial().Create(ctx, &entity.FinancialEntry{
		CompanyID: "c1", Type: entity.EntryReceivable, Status: entity.EntryStatusOpen,
		Amount: d("120"), DueDate: time.Now().AddDate(0, 0, -5),
	}))
	require.NoError(t, s.FiscalInvoices().Create(ctx, &entity.FiscalInvoice{CompanyID: "c1", SaleID: "s-x", Status: entity.NFeStatusAuthorized}))

	uc, c := newDashboard(s)
	out, err := uc.Admin(ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, 2, out.SalesToday.Count)
	assert.True(t, d("130").Equal(out.SalesToday.Total))
	assert.Equal(t, 2, out.SalesMonth.Count)
	require.Len(t, out.TopProducts, 2)
	assert.Equal(t, "CHA", out.TopProducts[0].SKU)
	assert.Equal(t, 1, out.LowStockCount)
	assert.True(t, d("120").Equal(out.OverdueReceivables))
	assert.Equal(t, 1, out.NFeByStatus[entity.NFeStatusAuthorized])

	// dentro del stale time se sirve la entrada cacheada
	addSale(t, s, cafe, "1", "25")
	cached, err := uc.Admin(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, cached.SalesToday.Count)

	c.InvalidateCompany(ctx, "c1", usecase.DashboardResource)
	fresh, err := uc.Admin(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.SalesToday.Count)
}

func TestAdmin_EmpresaSinDatos(t *testing.T) {
	uc, _ := newDashboard(memory.NewStore())
	out, err := uc.Admin(context.Background(), "vazia")
	require.NoError(t, err)
	assert.Zero(t, out.SalesToday.Count)
	assert.Empty(t, out.TopProducts)
	assert.NotNil(t, out.NFeByStatus)
}

func TestSecurity_CuentaLoginsFallidos(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	audit := s.Audit()
	for i := 0; i < 3; i++ {
		require.NoError(t, audit.Log(ctx, &entity.AuditLog{CompanyID: "c1", Action: entity.AuditLoginFailed, IP: "10.0.0.1", StatusCode: 401}))
	}
	require.NoError(t, audit.Log(ctx, &entity.AuditLog{CompanyID: "c1", Action: entity.AuditLoginSuccess, UserID: "u1", StatusCode: 200}))
	require.NoError(t, audit.Log(ctx, &entity.AuditLog{CompanyID: "c1", Action: entity.AuditLoginFailed,
		CreatedAt: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, audit.Log(ctx, &entity.AuditLog{CompanyID: "c2", Action: entity.AuditLoginFailed}))

	uc, _ := newDashboard(s)
	out, err := uc.Security(ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, 3, out.FailedLogins24h)
	require.Len(t, out.EventsByAction, 2)
	assert.Equal(t, entity.AuditLoginFailed, out.EventsByAction[0].Action)
	assert.Len(t, out.RecentEvents, 5)
}
