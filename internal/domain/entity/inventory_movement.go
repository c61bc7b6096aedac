package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"
	MovementTypeOUT        = "OUT"
	MovementTypeADJUSTMENT = "ADJUSTMENT"
	MovementTypeTRANSFER   = "TRANSFER"
)

// Orígenes del movimiento (referencia a la operación que lo generó).
const (
	MovementSourceManual     = "manual"
	MovementSourceSale       = "sale"
	MovementSourceSaleCancel = "sale_cancel"
	MovementSourceProduction = "production"
)

// InventoryMovement movimiento de inventario (entrada, salida, ajuste o traslado).
type InventoryMovement struct {
	ID            string
	CompanyID     string
	TransactionID string // id de la venta, orden de producción o traslado
	Source        string
	ProductID     string
	WarehouseID   string
	Type          string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	CreatedAt     time.Time
	CreatedBy     string
}
