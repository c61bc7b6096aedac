package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// WarehouseRepository puerto de persistencia para depósitos.
type WarehouseRepository interface {
	Create(ctx context.Context, w *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Warehouse, error)
}
