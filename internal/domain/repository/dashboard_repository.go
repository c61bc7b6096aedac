package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesTotals cantidad y monto de ventas confirmadas en un período.
type SalesTotals struct {
	Count int
	Total decimal.Decimal
}

// TopProduct producto por facturación.
type TopProduct struct {
	ProductID string
	SKU       string
	Name      string
	Quantity  decimal.Decimal
	Revenue   decimal.Decimal
}

// DashboardRepository consultas agregadas para el panel administrativo.
type DashboardRepository interface {
	SalesTotals(ctx context.Context, companyID string, from, to time.Time) (SalesTotals, error)
	TopProducts(ctx context.Context, companyID string, from, to time.Time, limit int) ([]TopProduct, error)
	NFeCountByStatus(ctx context.Context, companyID string) (map[string]int, error)
}
