// Package analytics contiene los paneles administrativo y de seguridad.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/cache"
)

const (
	dashboardTopProducts = 5  // productos en el widget del panel
	securityRecentEvents = 20 // eventos recientes en el panel de seguridad
)

// DashboardUseCase arma los paneles a partir de consultas read-only.
type DashboardUseCase struct {
	dashboard repository.DashboardRepository
	stock     repository.StockRepository
	financial repository.FinancialEntryRepository
	audit     repository.AuditRepository
	cache     *cache.Cache
	now       func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	dashboard repository.DashboardRepository,
	stock repository.StockRepository,
	financial repository.FinancialEntryRepository,
	audit repository.AuditRepository,
	c *cache.Cache,
) *DashboardUseCase {
	return &DashboardUseCase{dashboard: dashboard, stock: stock, financial: financial, audit: audit, cache: c, now: time.Now}
}

// Admin panel administrativo, cacheado con el preset dynamic.
//
// Consultas en paralelo:
//  1. SalesTotals(hoy) y SalesTotals(mes)
//  2. TopProducts(mes, top 5)
//  3. ListLowStock
//  4. Summary financiero (cobros abiertos y vencidos)
//  5. NFeCountByStatus
func (uc *DashboardUseCase) Admin(ctx context.Context, companyID string) (*dto.AdminDashboardResponse, error) {
	var out dto.AdminDashboardResponse
	key := cache.BuildKey(companyID, usecase.DashboardResource, "admin")
	err := uc.cache.Remember(ctx, key, cache.Dynamic, &out, func(ctx context.Context) (any, error) {
		return uc.buildAdmin(ctx, companyID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *DashboardUseCase) buildAdmin(ctx context.Context, companyID string) (*dto.AdminDashboardResponse, error) {
	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		today, month repository.SalesTotals
		top          []repository.TopProduct
		lowStock     []entity.LowStockItem
		summary      *entity.CashFlowSummary
		nfe          map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if today, err = uc.dashboard.SalesTotals(gctx, companyID, todayStart, todayEnd); err != nil {
			return fmt.Errorf("dashboard: ventas de hoy: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if month, err = uc.dashboard.SalesTotals(gctx, companyID, monthStart, todayEnd); err != nil {
			return fmt.Errorf("dashboard: ventas del mes: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if top, err = uc.dashboard.TopProducts(gctx, companyID, monthStart, todayEnd, dashboardTopProducts); err != nil {
			return fmt.Errorf("dashboard: top productos: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if lowStock, err = uc.stock.ListLowStock(gctx, companyID); err != nil {
			return fmt.Errorf("dashboard: stock bajo: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if summary, err = uc.financial.Summary(gctx, companyID, monthStart, todayEnd); err != nil {
			return fmt.Errorf("dashboard: financiero: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if nfe, err = uc.dashboard.NFeCountByStatus(gctx, companyID); err != nil {
			return fmt.Errorf("dashboard: nfe: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	topDTO := make([]dto.TopProductDTO, 0, len(top))
	for _, p := range top {
		topDTO = append(topDTO, dto.TopProductDTO{
			ProductID: p.ProductID, SKU: p.SKU, Name: p.Name,
			Quantity: p.Quantity, Revenue: p.Revenue.Round(2),
		})
	}
	if nfe == nil {
		nfe = map[string]int{}
	}
	return &dto.AdminDashboardResponse{
		SalesToday:         dto.PeriodTotalsDTO{Count: today.Count, Total: today.Total.Round(2)},
		SalesMonth:         dto.PeriodTotalsDTO{Count: month.Count, Total: month.Total.Round(2)},
		TopProducts:        topDTO,
		LowStockCount:      len(lowStock),
		OverdueReceivables: summary.OverdueReceivable.Round(2),
		OpenReceivables:    summary.OpenReceivable.Round(2),
		NFeByStatus:        nfe,
		GeneratedAt:        now.UTC(),
	}, nil
}

// Security panel de seguridad: logins fallidos y eventos de las últimas 24 h.
// No se cachea.
func (uc *DashboardUseCase) Security(ctx context.Context, companyID string) (*dto.SecurityDashboardResponse, error) {
	now := uc.now().UTC()
	since := now.Add(-24 * time.Hour)

	counts, err := uc.audit.CountByAction(ctx, companyID, since)
	if err != nil {
		return nil, fmt.Errorf("seguridad: eventos por acción: %w", err)
	}
	recent, err := uc.audit.ListRecent(ctx, companyID, securityRecentEvents)
	if err != nil {
		return nil, fmt.Errorf("seguridad: eventos recientes: %w", err)
	}

	out := &dto.SecurityDashboardResponse{
		EventsByAction: make([]dto.ActionCountDTO, 0, len(counts)),
		RecentEvents:   make([]dto.AuditLogDTO, 0, len(recent)),
		GeneratedAt:    now,
	}
	for _, c := range counts {
		if c.Action == entity.AuditLoginFailed {
			out.FailedLogins24h = c.Count
		}
		out.EventsByAction = append(out.EventsByAction, dto.ActionCountDTO{Action: c.Action, Count: c.Count})
	}
	for _, l := range recent {
		out.RecentEvents = append(out.RecentEvents, dto.AuditLogDTO{
			ID: l.ID, UserID: l.UserID, Action: l.Action, Resource: l.Resource,
			ResourceID: l.ResourceID, IP: l.IP, StatusCode: l.StatusCode, CreatedAt: l.CreatedAt,
		})
	}
	return out, nil
}
