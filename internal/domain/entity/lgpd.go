package entity

import (
	"encoding/json"
	"time"
)

// Bases legales LGPD (art. 7).
const (
	LegalBasisConsent    = "consent"
	LegalBasisContract   = "contract"
	LegalBasisLegal      = "legal_obligation"
	LegalBasisLegitimate = "legitimate_interest"
)

// Consent consentimiento de un titular para una finalidad.
type Consent struct {
	ID         string
	CompanyID  string
	CustomerID string
	Purpose    string // marketing, analytics, ...
	LegalBasis string
	Source     string // web, loja, app...
	GrantedAt  time.Time
	RevokedAt  *time.Time
}

// Active informa si el consentimiento sigue vigente.
func (c *Consent) Active() bool { return c.RevokedAt == nil }

// Tipos de solicitud del titular.
const (
	DataRequestExport    = "export"
	DataRequestAnonymize = "anonymize"
)

// Estados de la solicitud.
const (
	DataRequestPending   = "pending"
	DataRequestCompleted = "completed"
	DataRequestRejected  = "rejected"
)

// DataSubjectRequest solicitud del titular de los datos (art. 18 LGPD).
type DataSubjectRequest struct {
	ID          string
	CompanyID   string
	CustomerID  string
	Type        string
	Status      string
	Result      json.RawMessage // export: paquete de datos
	Reason      string          // motivo de rechazo
	RequestedBy string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
