package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// FiscalInvoiceRepository persistencia de NF-e.
type FiscalInvoiceRepository interface {
	Create(ctx context.Context, inv *entity.FiscalInvoice) error
	GetByID(ctx context.Context, id string) (*entity.FiscalInvoice, error)
	ListBySale(ctx context.Context, saleID string) ([]*entity.FiscalInvoice, error)
	List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.FiscalInvoice, error)
	Update(ctx context.Context, inv *entity.FiscalInvoice) error
}
