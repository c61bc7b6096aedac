package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name              string     `json:"name" validate:"required,min=1,max=200"`
	TradeName         string     `json:"trade_name" validate:"max=200"`
	CNPJ              string     `json:"cnpj" validate:"required,min=14,max=18"`
	StateRegistration string     `json:"state_registration" validate:"max=20"`
	TaxRegime         string     `json:"tax_regime" validate:"omitempty,oneof=1 2 3"`
	Address           AddressDTO `json:"address"`
	Phone             string     `json:"phone"`
	Email             string     `json:"email" validate:"omitempty,email"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name              *string     `json:"name" validate:"omitempty,min=1,max=200"`
	TradeName         *string     `json:"trade_name" validate:"omitempty,max=200"`
	StateRegistration *string     `json:"state_registration" validate:"omitempty,max=20"`
	TaxRegime         *string     `json:"tax_regime" validate:"omitempty,oneof=1 2 3"`
	Address           *AddressDTO `json:"address"`
	Phone             *string     `json:"phone"`
	Email             *string     `json:"email" validate:"omitempty,email"`
	Status            *string     `json:"status" validate:"omitempty,oneof=active suspended inactive"`
	NFeProviderID     *string     `json:"nfe_provider_id"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	TradeName         string     `json:"trade_name"`
	CNPJ              string     `json:"cnpj"`
	StateRegistration string     `json:"state_registration"`
	TaxRegime         string     `json:"tax_regime"`
	Address           AddressDTO `json:"address"`
	Phone             string     `json:"phone"`
	Email             string     `json:"email"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// SetModuleRequest activa o desactiva un módulo SaaS.
type SetModuleRequest struct {
	Module    string     `json:"module" validate:"required,oneof=inventory sales financial fiscal contracts production lgpd marketplace"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// ModuleResponse estado de un módulo en la empresa.
type ModuleResponse struct {
	Module      string     `json:"module"`
	IsActive    bool       `json:"is_active"`
	ActivatedAt time.Time  `json:"activated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
