package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock cantidad actual de un producto en un depósito.
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}

// LowStockItem producto con stock total por debajo del mínimo.
type LowStockItem struct {
	ProductID string
	SKU       string
	Name      string
	Quantity  decimal.Decimal
	MinStock  decimal.Decimal
}
