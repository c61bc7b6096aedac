package dto

import (
	"encoding/json"
	"time"
)

// RecordConsentRequest registro de consentimiento.
type RecordConsentRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Purpose    string `json:"purpose" validate:"required,max=100"`
	LegalBasis string `json:"legal_basis" validate:"required,oneof=consent contract legal_obligation legitimate_interest"`
	Source     string `json:"source" validate:"max=50"`
}

// ConsentResponse consentimiento.
type ConsentResponse struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id"`
	Purpose    string     `json:"purpose"`
	LegalBasis string     `json:"legal_basis"`
	Source     string     `json:"source"`
	Active     bool       `json:"active"`
	GrantedAt  time.Time  `json:"granted_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// OpenDataRequestRequest solicitud del titular.
type OpenDataRequestRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Type       string `json:"type" validate:"required,oneof=export anonymize"`
}

// RejectDataRequestRequest motivo del rechazo.
type RejectDataRequestRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// DataRequestResponse solicitud del titular; Result trae el paquete exportado.
type DataRequestResponse struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
