package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la orden de producción.
const (
	ProductionPlanned    = "planned"
	ProductionInProgress = "in_progress"
	ProductionCompleted  = "completed"
	ProductionCancelled  = "cancelled"
)

var productionTransitions = map[string][]string{
	ProductionPlanned:    {ProductionInProgress, ProductionCancelled},
	ProductionInProgress: {ProductionCompleted, ProductionCancelled},
}

// ProductionOrder orden de producción de un producto terminado a partir de insumos.
type ProductionOrder struct {
	ID          string
	CompanyID   string
	Number      int64
	ProductID   string // producto terminado
	WarehouseID string
	Quantity    decimal.Decimal
	Status      string
	Materials   []ProductionMaterial
	UnitCost    decimal.Decimal // costo unitario resultante al completar
	Notes       string
	CreatedBy   string
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductionMaterial insumo consumido por unidad producida.
type ProductionMaterial struct {
	ProductID       string
	QuantityPerUnit decimal.Decimal
}

// CanTransition informa si la orden puede pasar al estado to.
func (o *ProductionOrder) CanTransition(to string) bool {
	for _, s := range productionTransitions[o.Status] {
		if s == to {
			return true
		}
	}
	return false
}
