package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateContractRequest nuevo contrato (queda en borrador).
type CreateContractRequest struct {
	CustomerID   string          `json:"customer_id" validate:"required,uuid"`
	Number       string          `json:"number" validate:"required,max=50"`
	Title        string          `json:"title" validate:"required,max=200"`
	MonthlyValue decimal.Decimal `json:"monthly_value"`
	StartDate    time.Time       `json:"start_date" validate:"required"`
	EndDate      time.Time       `json:"end_date" validate:"required"`
	AutoRenew    bool            `json:"auto_renew"`
	Notes        string          `json:"notes"`
}

// RenewContractRequest extiende la fecha final en meses.
type RenewContractRequest struct {
	Months int `json:"months" validate:"required,min=1,max=60"`
}

// ContractResponse salida de un contrato.
type ContractResponse struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	Number       string          `json:"number"`
	Title        string          `json:"title"`
	MonthlyValue decimal.Decimal `json:"monthly_value"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	Status       string          `json:"status"`
	AutoRenew    bool            `json:"auto_renew"`
	Notes        string          `json:"notes"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ContractListResponse lista paginada de contratos.
type ContractListResponse struct {
	Items []ContractResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
