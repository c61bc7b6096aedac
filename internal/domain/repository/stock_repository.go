package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// StockRepository stock por producto y depósito.
type StockRepository interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	ListLowStock(ctx context.Context, companyID string) ([]entity.LowStockItem, error)
}
