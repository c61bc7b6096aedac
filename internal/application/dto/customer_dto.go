package dto

import "time"

// CreateCustomerRequest entrada para crear un cliente. Con lookup_cep=true la dirección
// se completa desde ViaCEP a partir de address.cep.
type CreateCustomerRequest struct {
	Name      string     `json:"name" validate:"required,min=1,max=200"`
	Document  string     `json:"document" validate:"required,min=11,max=18"`
	Email     string     `json:"email" validate:"omitempty,email"`
	Phone     string     `json:"phone" validate:"max=20"`
	Address   AddressDTO `json:"address"`
	LookupCEP bool       `json:"lookup_cep"`
}

// UpdateCustomerRequest campos opcionales; el documento no se cambia.
type UpdateCustomerRequest struct {
	Name      *string     `json:"name" validate:"omitempty,min=1,max=200"`
	Email     *string     `json:"email" validate:"omitempty,email"`
	Phone     *string     `json:"phone" validate:"omitempty,max=20"`
	Address   *AddressDTO `json:"address"`
	LookupCEP bool        `json:"lookup_cep"`
}

// CustomerResponse salida de un cliente.
type CustomerResponse struct {
	ID           string     `json:"id"`
	CompanyID    string     `json:"company_id"`
	Name         string     `json:"name"`
	Document     string     `json:"document"`
	DocumentKind string     `json:"document_kind"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Address      AddressDTO `json:"address"`
	Anonymized   bool       `json:"anonymized"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CustomerListResponse lista paginada de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// DocumentValidationResponse resultado de validar un CPF/CNPJ.
type DocumentValidationResponse struct {
	Valid      bool   `json:"valid"`
	Kind       string `json:"kind,omitempty"`
	Normalized string `json:"normalized,omitempty"`
	Formatted  string `json:"formatted,omitempty"`
	Error      string `json:"error,omitempty"`
}

// DuplicateCheckResponse informa si el documento ya está registrado en la empresa.
type DuplicateCheckResponse struct {
	Exists     bool   `json:"exists"`
	CustomerID string `json:"customer_id,omitempty"`
}
