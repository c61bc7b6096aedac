package dto

import "time"

// IssueNFeRequest emisión de NF-e para una venta.
type IssueNFeRequest struct {
	SaleID string `json:"sale_id" validate:"required,uuid"`
}

// CancelNFeRequest cancelamento: la SEFAZ exige justificativa de 15 a 255 caracteres.
type CancelNFeRequest struct {
	Justification string `json:"justification" validate:"required,min=15,max=255"`
}

// FiscalInvoiceResponse salida de una NF-e.
type FiscalInvoiceResponse struct {
	ID          string     `json:"id"`
	SaleID      string     `json:"sale_id"`
	Status      string     `json:"status"`
	Series      string     `json:"series,omitempty"`
	Number      string     `json:"number,omitempty"`
	AccessKey   string     `json:"access_key,omitempty"`
	Protocol    string     `json:"protocol,omitempty"`
	Message     string     `json:"message,omitempty"`
	XMLDigest   string     `json:"xml_digest,omitempty"`
	IssuedAt    *time.Time `json:"issued_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
