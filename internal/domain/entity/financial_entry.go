package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de lanzamiento financiero.
const (
	EntryReceivable = "receivable" // contas a receber
	EntryPayable    = "payable"    // contas a pagar
)

// Estados del lanzamiento.
const (
	EntryStatusOpen      = "open"
	EntryStatusPaid      = "paid"
	EntryStatusCancelled = "cancelled"
)

// FinancialEntry cuenta por cobrar o por pagar.
type FinancialEntry struct {
	ID            string
	CompanyID     string
	Type          string
	Description   string
	Amount        decimal.Decimal
	DueDate       time.Time
	Status        string
	CustomerID    string // opcional
	SaleID        string // opcional: generado por una venta
	ContractID    string // opcional: generado por un contrato
	PaymentMethod string
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOverdue abierto y con vencimiento anterior a ref (solo fecha).
func (e *FinancialEntry) IsOverdue(ref time.Time) bool {
	if e.Status != EntryStatusOpen {
		return false
	}
	y, m, d := ref.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, ref.Location())
	return e.DueDate.Before(today)
}

// CashFlowSummary resumen de flujo de caja de la empresa.
type CashFlowSummary struct {
	OpenReceivable    decimal.Decimal
	OpenPayable       decimal.Decimal
	OverdueReceivable decimal.Decimal
	OverduePayable    decimal.Decimal
	ReceivedInPeriod  decimal.Decimal
	PaidInPeriod      decimal.Decimal
	Balance           decimal.Decimal // ReceivedInPeriod - PaidInPeriod
}
