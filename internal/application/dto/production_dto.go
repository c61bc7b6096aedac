package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialRequest insumo consumido por unidad producida.
type MaterialRequest struct {
	ProductID       string          `json:"product_id" validate:"required,uuid"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// CreateProductionOrderRequest nueva orden de producción.
type CreateProductionOrderRequest struct {
	ProductID   string            `json:"product_id" validate:"required,uuid"`
	WarehouseID string            `json:"warehouse_id" validate:"required,uuid"`
	Quantity    decimal.Decimal   `json:"quantity"`
	Materials   []MaterialRequest `json:"materials" validate:"required,min=1,dive"`
	Notes       string            `json:"notes"`
}

// ProductionOrderResponse salida de una orden.
type ProductionOrderResponse struct {
	ID          string            `json:"id"`
	Number      int64             `json:"number"`
	ProductID   string            `json:"product_id"`
	WarehouseID string            `json:"warehouse_id"`
	Quantity    decimal.Decimal   `json:"quantity"`
	Status      string            `json:"status"`
	Materials   []MaterialRequest `json:"materials"`
	UnitCost    decimal.Decimal   `json:"unit_cost"`
	Notes       string            `json:"notes"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
