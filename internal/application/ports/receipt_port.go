package ports

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// ReceiptData datos para el comprobante de venta.
type ReceiptData struct {
	Company  *entity.Company
	Customer *entity.Customer // nil = consumidor final
	Sale     *entity.Sale
	Products map[string]*entity.Product
	Invoice  *entity.FiscalInvoice // NF-e autorizada, si existe
}

// ReceiptRenderer genera el PDF del comprobante.
type ReceiptRenderer interface {
	RenderSaleReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}
