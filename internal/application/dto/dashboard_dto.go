package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodTotalsDTO cantidad y monto.
type PeriodTotalsDTO struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// TopProductDTO producto por facturación.
type TopProductDTO struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// AdminDashboardResponse panel administrativo.
type AdminDashboardResponse struct {
	SalesToday         PeriodTotalsDTO `json:"sales_today"`
	SalesMonth         PeriodTotalsDTO `json:"sales_month"`
	TopProducts        []TopProductDTO `json:"top_products"`
	LowStockCount      int             `json:"low_stock_count"`
	OverdueReceivables decimal.Decimal `json:"overdue_receivables"`
	OpenReceivables    decimal.Decimal `json:"open_receivables"`
	NFeByStatus        map[string]int  `json:"nfe_by_status"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// ActionCountDTO eventos por acción.
type ActionCountDTO struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// AuditLogDTO evento de auditoría.
type AuditLogDTO struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	CreatedAt  time.Time `json:"created_at"`
}

// SecurityDashboardResponse panel de seguridad.
type SecurityDashboardResponse struct {
	FailedLogins24h int              `json:"failed_logins_24h"`
	EventsByAction  []ActionCountDTO `json:"events_by_action"`
	RecentEvents    []AuditLogDTO    `json:"recent_events"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// AuditRunResponse ejecución de la auditoría de código muerto.
type AuditRunResponse struct {
	ID            string          `json:"id"`
	SourceDir     string          `json:"source_dir"`
	Status        string          `json:"status"`
	FilesScanned  int             `json:"files_scanned"`
	UnusedFiles   int             `json:"unused_files"`
	UnusedExports int             `json:"unused_exports"`
	Error         string          `json:"error,omitempty"`
	Report        json.RawMessage `json:"report,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
}
