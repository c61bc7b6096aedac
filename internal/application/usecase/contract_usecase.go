package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// ContractUseCase contratos recurrentes: ciclo de vida, renovación y vencimiento.
type ContractUseCase struct {
	repo      repository.ContractRepository
	customers repository.CustomerRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewContractUseCase construye el caso de uso.
func NewContractUseCase(repo repository.ContractRepository, customers repository.CustomerRepository, log zerolog.Logger) *ContractUseCase {
	return &ContractUseCase{repo: repo, customers: customers, log: log, now: time.Now}
}

// Create registra el contrato en borrador. EndDate debe ser posterior a StartDate.
func (uc *ContractUseCase) Create(ctx context.Context, companyID string, in dto.CreateContractRequest) (*dto.ContractResponse, error) {
	if !in.EndDate.After(in.StartDate) || in.MonthlyValue.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	now := uc.now().UTC()
	c := &entity.Contract{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		CustomerID:   in.CustomerID,
		Number:       in.Number,
		Title:        in.Title,
		MonthlyValue: in.MonthlyValue.Round(2),
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       entity.ContractStatusDraft,
		AutoRenew:    in.AutoRenew,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toContractResponse(c), nil
}

// GetByID contrato de la empresa.
func (uc *ContractUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ContractResponse, error) {
	c, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toContractResponse(c), nil
}

func (uc *ContractUseCase) get(ctx context.Context, companyID, id string) (*entity.Contract, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// List contratos por estado (vacío = todos).
func (uc *ContractUseCase) List(ctx context.Context, companyID, status string, limit, offset int) (*dto.ContractListResponse, error) {
	list, err := uc.repo.List(ctx, companyID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return &dto.ContractListResponse{Items: toContractResponses(list), Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// Activate draft|suspended → active.
func (uc *ContractUseCase) Activate(ctx context.Context, companyID, id string) (*dto.ContractResponse, error) {
	return uc.transition(ctx, companyID, id, entity.ContractStatusActive)
}

// Suspend active → suspended.
func (uc *ContractUseCase) Suspend(ctx context.Context, companyID, id string) (*dto.ContractResponse, error) {
	return uc.transition(ctx, companyID, id, entity.ContractStatusSuspended)
}

// Terminate rescinde el contrato.
func (uc *ContractUseCase) Terminate(ctx context.Context, companyID, id string) (*dto.ContractResponse, error) {
	return uc.transition(ctx, companyID, id, entity.ContractStatusTerminated)
}

func (uc *ContractUseCase) transition(ctx context.Context, companyID, id, to string) (*dto.ContractResponse, error) {
	c, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !c.CanTransition(to) {
		return nil, domain.ErrInvalidTransition
	}
	c.Status = to
	c.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toContractResponse(c), nil
}

// Renew extiende la fecha final de un contrato activo.
func (uc *ContractUseCase) Renew(ctx context.Context, companyID, id string, months int) (*dto.ContractResponse, error) {
	if months < 1 || months > 60 {
		return nil, domain.ErrInvalidInput
	}
	c, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if c.Status != entity.ContractStatusActive {
		return nil, domain.ErrInvalidTransition
	}
	c.EndDate = addMonths(c.EndDate, months)
	c.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toContractResponse(c), nil
}

// ListExpiring contratos activos que terminan en los próximos days días.
func (uc *ContractUseCase) ListExpiring(ctx context.Context, companyID string, days int) ([]dto.ContractResponse, error) {
	if days <= 0 {
		days = 30
	}
	from := startOfDay(uc.now())
	list, err := uc.repo.ListEndingBetween(ctx, companyID, from, from.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	active := list[:0]
	for _, c := range list {
		if c.Status == entity.ContractStatusActive {
			active = append(active, c)
		}
	}
	return toContractResponses(active), nil
}

// ExpireResult resultado del barrido de vencimientos.
type ExpireResult struct {
	Expired int `json:"expired"`
	Renewed int `json:"renewed"`
}

// ExpireSweep vence los contratos activos con fecha final pasada. Los de renovación automática
// se extienden de a 12 meses hasta cubrir hoy. companyID vacío recorre todas las empresas.
func (uc *ContractUseCase) ExpireSweep(ctx context.Context, companyID string) (*ExpireResult, error) {
	today := startOfDay(uc.now())
	list, err := uc.repo.ListActiveEndedBefore(ctx, companyID, today)
	if err != nil {
		return nil, err
	}
	res := &ExpireResult{}
	for _, c := range list {
		if c.AutoRenew {
			end := c.EndDate
			for years := 1; c.EndDate.Before(today); years++ {
				c.EndDate = addMonths(end, 12*years)
			}
			res.Renewed++
		} else {
			c.Status = entity.ContractStatusExpired
			res.Expired++
		}
		c.UpdatedAt = uc.now().UTC()
		if err := uc.repo.Update(ctx, c); err != nil {
			return res, err
		}
	}
	if len(list) > 0 {
		uc.log.Info().Int("expired", res.Expired).Int("renewed", res.Renewed).Msg("barrido de contratos")
	}
	return res, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toContractResponses(list []*entity.Contract) []dto.ContractResponse {
	out := make([]dto.ContractResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toContractResponse(c))
	}
	return out
}

func toContractResponse(c *entity.Contract) *dto.ContractResponse {
	return &dto.ContractResponse{
		ID:           c.ID,
		CustomerID:   c.CustomerID,
		Number:       c.Number,
		Title:        c.Title,
		MonthlyValue: c.MonthlyValue,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		Status:       c.Status,
		AutoRenew:    c.AutoRenew,
		Notes:        c.Notes,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// addMonths suma n meses sin desbordar: el 31/01 + 1 mes es el último día de febrero.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
