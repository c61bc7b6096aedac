package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// FinancialFilter filtros de lanzamientos.
type FinancialFilter struct {
	Type        string
	Status      string
	DueFrom     *time.Time
	DueTo       *time.Time
	OnlyOverdue bool
	Limit       int
	Offset      int
}

// FinancialEntryRepository cuentas por cobrar y por pagar.
type FinancialEntryRepository interface {
	Create(ctx context.Context, e *entity.FinancialEntry) error
	GetByID(ctx context.Context, id string) (*entity.FinancialEntry, error)
	List(ctx context.Context, companyID string, f FinancialFilter) ([]*entity.FinancialEntry, error)
	ListBySale(ctx context.Context, saleID string) ([]*entity.FinancialEntry, error)
	Update(ctx context.Context, e *entity.FinancialEntry) error
	Summary(ctx context.Context, companyID string, from, to time.Time) (*entity.CashFlowSummary, error)
}
