package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEntryRequest nueva cuenta por cobrar o por pagar.
type CreateEntryRequest struct {
	Type          string          `json:"type" validate:"required,oneof=receivable payable"`
	Description   string          `json:"description" validate:"required,max=300"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date" validate:"required"`
	CustomerID    string          `json:"customer_id" validate:"omitempty,uuid"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=dinheiro pix cartao boleto"`
}

// MarkPaidRequest baja de un lanzamiento abierto.
type MarkPaidRequest struct {
	PaidAt        *time.Time `json:"paid_at"`
	PaymentMethod string     `json:"payment_method" validate:"omitempty,oneof=dinheiro pix cartao boleto"`
}

// FinancialFilterRequest filtros de listado (query string).
type FinancialFilterRequest struct {
	Type        string `query:"type" validate:"omitempty,oneof=receivable payable"`
	Status      string `query:"status" validate:"omitempty,oneof=open paid cancelled"`
	DueFrom     string `query:"due_from"` // YYYY-MM-DD
	DueTo       string `query:"due_to"`
	OnlyOverdue bool   `query:"overdue"`
	PageRequest
}

// FinancialEntryResponse salida de un lanzamiento.
type FinancialEntryResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
	Status        string          `json:"status"`
	Overdue       bool            `json:"overdue"`
	CustomerID    string          `json:"customer_id,omitempty"`
	SaleID        string          `json:"sale_id,omitempty"`
	ContractID    string          `json:"contract_id,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FinancialListResponse lista paginada de lanzamientos.
type FinancialListResponse struct {
	Items []FinancialEntryResponse `json:"items"`
	Page  PageResponse             `json:"page"`
}

// CashFlowResponse resumen de flujo de caja para el período.
type CashFlowResponse struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	OpenReceivable    decimal.Decimal `json:"open_receivable"`
	OpenPayable       decimal.Decimal `json:"open_payable"`
	OverdueReceivable decimal.Decimal `json:"overdue_receivable"`
	OverduePayable    decimal.Decimal `json:"overdue_payable"`
	ReceivedInPeriod  decimal.Decimal `json:"received_in_period"`
	PaidInPeriod      decimal.Decimal `json:"paid_in_period"`
	Balance           decimal.Decimal `json:"balance"`
}
