package ports

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// NFeIssueRequest datos necesarios para emitir la NF-e de una venta.
type NFeIssueRequest struct {
	InvoiceID string // id local, viaja como referencia externa al proveedor
	Company   *entity.Company
	Customer  *entity.Customer // nil = consumidor final
	Sale      *entity.Sale
	Products  map[string]*entity.Product
}

// NFeProviderStatus estado del documento informado por el proveedor, ya mapeado a
// los estados entity.NFeStatus*.
type NFeProviderStatus struct {
	ProviderID string
	Status     string
	AccessKey  string
	Protocol   string
	Number     string
	Series     string
	Message    string
}

// NFeProvider puerto de salida hacia el emisor de NF-e (API REST estilo NFe.io).
// Las implementaciones deben reintentar errores transitorios.
type NFeProvider interface {
	Issue(ctx context.Context, providerCompanyID string, req NFeIssueRequest) (*NFeProviderStatus, error)
	Get(ctx context.Context, providerCompanyID, providerID string) (*NFeProviderStatus, error)
	DownloadXML(ctx context.Context, providerCompanyID, providerID string) ([]byte, error)
	Cancel(ctx context.Context, providerCompanyID, providerID, justification string) (*NFeProviderStatus, error)
}
