package sales

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/brdocs"
	"github.com/jhoicas/erp-api/pkg/textkey"
)

// ImportOrder importa un pedido de marketplace. Es idempotente por (canal, external_id):
// un pedido ya importado devuelve la venta existente con Created=false.
// El comprador se crea si su documento no existe en la empresa; las líneas se resuelven por SKU.
func (uc *UseCase) ImportOrder(ctx context.Context, companyID, userID string, in dto.MarketplaceOrderRequest) (*dto.ImportOrderResponse, error) {
	if !entity.IsMarketplaceChannel(in.Channel) || strings.TrimSpace(in.ExternalID) == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if existing, err := uc.sales.GetByExternalID(ctx, companyID, in.Channel, in.ExternalID); err != nil {
		return nil, err
	} else if existing != nil {
		return &dto.ImportOrderResponse{Sale: *ToSaleResponse(existing), Created: false}, nil
	}

	payment := in.PaymentMethod
	if payment == "" {
		payment = entity.PaymentPix
	}
	if !validPayment(payment) || in.Discount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkWarehouse(ctx, companyID, in.WarehouseID); err != nil {
		return nil, err
	}
	kind, doc, err := brdocs.ValidateDocument(in.Customer.Document)
	if err != nil {
		return nil, domain.Detail(domain.ErrInvalidDocument, "comprador: %s", usecase.DocumentMessage(err))
	}

	// ── Líneas por SKU ─────────────────────────────────────────────────────────
	products := make(map[string]*entity.Product, len(in.Items))
	items := make([]entity.SaleItem, 0, len(in.Items))
	for _, it := range in.Items {
		if !it.Quantity.IsPositive() || it.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		p, err := uc.products.GetBySKU(ctx, companyID, it.SKU)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.Detail(domain.ErrNotFound, "SKU %s", it.SKU)
		}
		if !p.Active {
			return nil, domain.Detail(domain.ErrInvalidInput, "produto %s inativo", p.SKU)
		}
		products[p.ID] = p
		price := it.UnitPrice
		if price.IsZero() {
			price = p.Price
		}
		items = append(items, entity.SaleItem{ProductID: p.ID, Quantity: it.Quantity, UnitPrice: price})
	}

	sale := uc.newSale(companyID, userID, "", in.WarehouseID, in.Channel, payment, in.Discount, items)
	sale.ExternalID = in.ExternalID
	if sale.Total.IsNegative() {
		return nil, domain.Detail(domain.ErrInvalidInput, "desconto maior que o subtotal")
	}

	// ── Comprador + venta en la misma transacción ──────────────────────────────
	err = uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		customer, err := r.Customers.GetByDocument(ctx, companyID, doc)
		if err != nil {
			return err
		}
		if customer == nil {
			customer = &entity.Customer{
				ID:           uuid.New().String(),
				CompanyID:    companyID,
				Name:         in.Customer.Name,
				Document:     doc,
				DocumentKind: string(kind),
				Email:        in.Customer.Email,
				Phone:        in.Customer.Phone,
				SearchKey:    textkey.Normalize(in.Customer.Name),
				CreatedAt:    sale.CreatedAt,
				UpdatedAt:    sale.CreatedAt,
			}
			if in.Customer.Address != nil {
				addr, err := usecase.AddressFromDTO(*in.Customer.Address)
				if err != nil {
					return err
				}
				customer.Address = addr
			}
			if err := r.Customers.Create(ctx, customer); err != nil {
				return err
			}
		}
		sale.CustomerID = customer.ID
		return uc.persistSale(ctx, r, sale, products, nil)
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// Otro request importó el mismo pedido entre la consulta y el commit.
		existing, gerr := uc.sales.GetByExternalID(ctx, companyID, in.Channel, in.ExternalID)
		if gerr == nil && existing != nil {
			return &dto.ImportOrderResponse{Sale: *ToSaleResponse(existing), Created: false}, nil
		}
	}
	if err != nil {
		return nil, err
	}
	uc.cache.InvalidateCompany(ctx, companyID, usecase.DashboardResource)
	uc.log.Info().Str("sale_id", sale.ID).Str("channel", in.Channel).Str("external_id", in.ExternalID).Msg("pedido de marketplace importado")
	return &dto.ImportOrderResponse{Sale: *ToSaleResponse(sale), Created: true}, nil
}
