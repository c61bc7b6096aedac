package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/cache"
)

// DashboardResource recurso de cache del panel; se invalida cuando cambian ventas, NF-e o finanzas.
const DashboardResource = "dashboard"

const dateLayout = "2006-01-02"

// FinancialUseCase cuentas por cobrar y por pagar.
type FinancialUseCase struct {
	repo  repository.FinancialEntryRepository
	cache *cache.Cache
	now   func() time.Time
}

// NewFinancialUseCase construye el caso de uso.
func NewFinancialUseCase(repo repository.FinancialEntryRepository, c *cache.Cache) *FinancialUseCase {
	return &FinancialUseCase{repo: repo, cache: c, now: time.Now}
}

// Create registra un lanzamiento abierto. Amount debe ser positivo.
func (uc *FinancialUseCase) Create(ctx context.Context, companyID string, in dto.CreateEntryRequest) (*dto.FinancialEntryResponse, error) {
	if in.Type != entity.EntryReceivable && in.Type != entity.EntryPayable {
		return nil, domain.ErrInvalidInput
	}
	if !in.Amount.IsPositive() || in.DueDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now().UTC()
	e := &entity.FinancialEntry{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		Type:          in.Type,
		Description:   in.Description,
		Amount:        in.Amount.Round(2),
		DueDate:       in.DueDate,
		Status:        entity.EntryStatusOpen,
		CustomerID:    in.CustomerID,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	uc.cache.InvalidateCompany(ctx, companyID, DashboardResource)
	return uc.toResponse(e), nil
}

// MarkPaid da de baja un lanzamiento abierto.
func (uc *FinancialUseCase) MarkPaid(ctx context.Context, companyID, id string, in dto.MarkPaidRequest) (*dto.FinancialEntryResponse, error) {
	e, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if e.Status != entity.EntryStatusOpen {
		return nil, domain.ErrInvalidTransition
	}
	paidAt := uc.now().UTC()
	if in.PaidAt != nil {
		paidAt = in.PaidAt.UTC()
	}
	e.Status = entity.EntryStatusPaid
	e.PaidAt = &paidAt
	if in.PaymentMethod != "" {
		e.PaymentMethod = in.PaymentMethod
	}
	e.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	uc.cache.InvalidateCompany(ctx, companyID, DashboardResource)
	return uc.toResponse(e), nil
}

// Cancel anula un lanzamiento abierto.
func (uc *FinancialUseCase) Cancel(ctx context.Context, companyID, id string) (*dto.FinancialEntryResponse, error) {
	e, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if e.Status != entity.EntryStatusOpen {
		return nil, domain.ErrInvalidTransition
	}
	e.Status = entity.EntryStatusCancelled
	e.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	uc.cache.InvalidateCompany(ctx, companyID, DashboardResource)
	return uc.toResponse(e), nil
}

// GetByID lanzamiento de la empresa.
func (uc *FinancialUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.FinancialEntryResponse, error) {
	e, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(e), nil
}

func (uc *FinancialUseCase) get(ctx context.Context, companyID, id string) (*entity.FinancialEntry, error) {
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil || e.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

// List lanzamientos con filtros; las fechas llegan como YYYY-MM-DD.
func (uc *FinancialUseCase) List(ctx context.Context, companyID string, in dto.FinancialFilterRequest) (*dto.FinancialListResponse, error) {
	in.DefaultPage()
	f := repository.FinancialFilter{
		Type:        in.Type,
		Status:      in.Status,
		OnlyOverdue: in.OnlyOverdue,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	var err error
	if f.DueFrom, err = parseDate(in.DueFrom); err != nil {
		return nil, err
	}
	if f.DueTo, err = parseDate(in.DueTo); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.FinancialEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *uc.toResponse(e))
	}
	return &dto.FinancialListResponse{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

// CashFlow resumen del período [from, to]. Sin fechas se usa el mes en curso.
func (uc *FinancialUseCase) CashFlow(ctx context.Context, companyID, fromStr, toStr string) (*dto.CashFlowResponse, error) {
	from, err := parseDate(fromStr)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(toStr)
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	if from == nil {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		from = &first
	}
	if to == nil {
		end := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
		to = &end
	} else {
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond) // fin del día
		to = &end
	}
	if to.Before(*from) {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.repo.Summary(ctx, companyID, *from, *to)
	if err != nil {
		return nil, err
	}
	return &dto.CashFlowResponse{
		From:              *from,
		To:                *to,
		OpenReceivable:    s.OpenReceivable,
		OpenPayable:       s.OpenPayable,
		OverdueReceivable: s.OverdueReceivable,
		OverduePayable:    s.OverduePayable,
		ReceivedInPeriod:  s.ReceivedInPeriod,
		PaidInPeriod:      s.PaidInPeriod,
		Balance:           s.Balance,
	}, nil
}

func (uc *FinancialUseCase) toResponse(e *entity.FinancialEntry) *dto.FinancialEntryResponse {
	return ToFinancialEntryResponse(e, uc.now())
}

// ToFinancialEntryResponse convierte la entidad; Overdue se calcula respecto de ref.
func ToFinancialEntryResponse(e *entity.FinancialEntry, ref time.Time) *dto.FinancialEntryResponse {
	return &dto.FinancialEntryResponse{
		ID:            e.ID,
		Type:          e.Type,
		Description:   e.Description,
		Amount:        e.Amount,
		DueDate:       e.DueDate,
		Status:        e.Status,
		Overdue:       e.IsOverdue(ref),
		CustomerID:    e.CustomerID,
		SaleID:        e.SaleID,
		ContractID:    e.ContractID,
		PaymentMethod: e.PaymentMethod,
		PaidAt:        e.PaidAt,
		CreatedAt:     e.CreatedAt,
	}
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return &t, nil
}
