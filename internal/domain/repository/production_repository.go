package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// ProductionOrderRepository persistencia de órdenes de producción.
type ProductionOrderRepository interface {
	NextNumber(ctx context.Context, companyID string) (int64, error)
	Create(ctx context.Context, o *entity.ProductionOrder) error
	GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error)
	List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.ProductionOrder, error)
	// Update persiste la orden solo si su estado sigue siendo from; si no, ErrInvalidTransition.
	Update(ctx context.Context, o *entity.ProductionOrder, from string) error
}
