package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto o SKU del inventario.
// Cost es el costo promedio ponderado calculado desde las entradas.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // único por empresa
	Name        string
	Description string
	NCM         string // nomenclatura fiscal, 8 dígitos
	CFOP        string // CFOP por defecto en ventas (5102 dentro del estado)
	Unit        string // UN, KG, CX...
	Price       decimal.Decimal
	Cost        decimal.Decimal
	MinStock    decimal.Decimal
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
