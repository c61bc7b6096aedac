package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// ContractRepository persistencia de contratos.
type ContractRepository interface {
	Create(ctx context.Context, c *entity.Contract) error
	GetByID(ctx context.Context, id string) (*entity.Contract, error)
	List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.Contract, error)
	ListEndingBetween(ctx context.Context, companyID string, from, to time.Time) ([]*entity.Contract, error)
	// ListActiveEndedBefore contratos activos con fecha final vencida (todas las empresas si companyID == "").
	ListActiveEndedBefore(ctx context.Context, companyID string, ref time.Time) ([]*entity.Contract, error)
	Update(ctx context.Context, c *entity.Contract) error
}
