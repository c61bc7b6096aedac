package entity

import (
	"encoding/json"
	"time"
)

// Acciones de auditoría de seguridad.
const (
	AuditLoginSuccess = "auth.login"
	AuditLoginFailed  = "auth.login_failed"
)

// AuditLog evento auditable (escrituras vía API y eventos de autenticación).
type AuditLog struct {
	ID         string
	CompanyID  string
	UserID     string
	Action     string // ej: "POST /api/sales" o "auth.login_failed"
	Resource   string
	ResourceID string
	IP         string
	StatusCode int
	Metadata   json.RawMessage
	CreatedAt  time.Time
}

// ActionCount agregación de eventos por acción.
type ActionCount struct {
	Action string
	Count  int
}

// AuditRun ejecución de la auditoría de código muerto.
type AuditRun struct {
	ID            string
	CompanyID     string
	RequestedBy   string
	SourceDir     string
	FilesScanned  int
	UnusedFiles   int
	UnusedExports int
	Report        json.RawMessage
	Status        string // completed | failed
	Error         string
	StartedAt     time.Time
	FinishedAt    time.Time
}
