package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del contrato.
const (
	ContractStatusDraft      = "draft"
	ContractStatusActive     = "active"
	ContractStatusSuspended  = "suspended"
	ContractStatusTerminated = "terminated"
	ContractStatusExpired    = "expired"
)

var contractTransitions = map[string][]string{
	ContractStatusDraft:     {ContractStatusActive, ContractStatusTerminated},
	ContractStatusActive:    {ContractStatusSuspended, ContractStatusTerminated, ContractStatusExpired},
	ContractStatusSuspended: {ContractStatusActive, ContractStatusTerminated},
}

// Contract contrato recurrente con un cliente.
type Contract struct {
	ID           string
	CompanyID    string
	CustomerID   string
	Number       string
	Title        string
	MonthlyValue decimal.Decimal
	StartDate    time.Time
	EndDate      time.Time
	Status       string
	AutoRenew    bool
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanTransition informa si el contrato puede pasar al estado to.
func (c *Contract) CanTransition(to string) bool {
	for _, s := range contractTransitions[c.Status] {
		if s == to {
			return true
		}
	}
	return false
}
