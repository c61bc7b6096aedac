package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// InventoryMovementRepository historial de movimientos.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.InventoryMovement, error)
}
