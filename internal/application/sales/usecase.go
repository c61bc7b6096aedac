// Package sales ventas de mostrador y de marketplaces: stock, cuenta por cobrar y comprobante.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/cache"
)

// Días de vencimiento del boleto cuando la venta no informa due_date.
const defaultBoletoDays = 3

// UseCase crea y cancela ventas. Cada venta descuenta el stock y genera la cuenta por
// cobrar en una sola transacción.
type UseCase struct {
	txRunner   repository.TxRunner
	sales      repository.SaleRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	customers  repository.CustomerRepository
	companies  repository.CompanyRepository
	invoices   repository.FiscalInvoiceRepository
	receipts   ports.ReceiptRenderer
	cache      *cache.Cache
	log        zerolog.Logger
	now        func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner repository.TxRunner,
	sales repository.SaleRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	customers repository.CustomerRepository,
	companies repository.CompanyRepository,
	invoices repository.FiscalInvoiceRepository,
	receipts ports.ReceiptRenderer,
	c *cache.Cache,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		txRunner:   txRunner,
		sales:      sales,
		products:   products,
		warehouses: warehouses,
		customers:  customers,
		companies:  companies,
		invoices:   invoices,
		receipts:   receipts,
		cache:      c,
		log:        log,
		now:        time.Now,
	}
}

func validPayment(m string) bool {
	switch m {
	case entity.PaymentCash, entity.PaymentPix, entity.PaymentCard, entity.PaymentBoleto:
		return true
	}
	return false
}

// Create registra una venta PDV.
func (uc *UseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Items) == 0 || !validPayment(in.PaymentMethod) || in.Discount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkWarehouse(ctx, companyID, in.WarehouseID); err != nil {
		return nil, err
	}
	if in.CustomerID != "" {
		c, err := uc.customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil || c.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
	}

	// Productos y precios se validan fuera de la transacción (solo lectura).
	products := make(map[string]*entity.Product, len(in.Items))
	items := make([]entity.SaleItem, 0, len(in.Items))
	for _, it := range in.Items {
		if !it.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		p, err := uc.product(ctx, companyID, it.ProductID)
		if err != nil {
			return nil, err
		}
		products[p.ID] = p
		price := p.Price
		if it.UnitPrice != nil {
			if it.UnitPrice.IsNegative() {
				return nil, domain.ErrInvalidInput
			}
			price = *it.UnitPrice
		}
		items = append(items, entity.SaleItem{ProductID: p.ID, Quantity: it.Quantity, UnitPrice: price})
	}

	sale := uc.newSale(companyID, userID, in.CustomerID, in.WarehouseID, entity.ChannelPDV, in.PaymentMethod, in.Discount, items)
	sale.Notes = in.Notes
	if sale.Total.IsNegative() {
		return nil, domain.Detail(domain.ErrInvalidInput, "desconto maior que o subtotal")
	}
	if err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		return uc.persistSale(ctx, r, sale, products, in.DueDate)
	}); err != nil {
		return nil, err
	}
	uc.cache.InvalidateCompany(ctx, companyID, usecase.DashboardResource)
	uc.log.Info().Str("sale_id", sale.ID).Int64("number", sale.Number).Str("total", sale.Total.StringFixed(2)).Msg("venta registrada")
	return ToSaleResponse(sale), nil
}

func (uc *UseCase) checkWarehouse(ctx context.Context, companyID, id string) error {
	w, err := uc.warehouses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil || w.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return nil
}

func (uc *UseCase) product(ctx context.Context, companyID, id string) (*entity.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if !p.Active {
		return nil, domain.Detail(domain.ErrInvalidInput, "produto %s inativo", p.SKU)
	}
	return p, nil
}

func (uc *UseCase) newSale(companyID, userID, customerID, warehouseID, channel, payment string, discount decimal.Decimal, items []entity.SaleItem) *entity.Sale {
	now := uc.now().UTC()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		CustomerID:    customerID,
		WarehouseID:   warehouseID,
		Status:        entity.SaleStatusConfirmed,
		Channel:       channel,
		PaymentMethod: payment,
		Discount:      discount.Round(2),
		Items:         items,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i := range sale.Items {
		sale.Items[i].ID = uuid.New().String()
		sale.Items[i].SaleID = sale.ID
	}
	sale.ComputeTotals()
	return sale
}

// persistSale corre dentro de la transacción: consecutivo, OUT por línea, venta y cuenta por cobrar.
// Dinero, PIX y tarjeta quedan cobrados; el boleto queda abierto hasta el vencimiento.
func (uc *UseCase) persistSale(ctx context.Context, r repository.TxRepos, sale *entity.Sale, products map[string]*entity.Product, dueDate *time.Time) error {
	number, err := r.Sales.NextNumber(ctx, sale.CompanyID)
	if err != nil {
		return err
	}
	sale.Number = number
	for _, it := range sale.Items {
		if _, err := inventory.ApplyOUT(ctx, r, inventory.Line{
			Product:       products[it.ProductID],
			WarehouseID:   sale.WarehouseID,
			UserID:        sale.CreatedBy,
			Quantity:      it.Quantity,
			TransactionID: sale.ID,
			Source:        entity.MovementSourceSale,
			Now:           sale.CreatedAt,
		}); err != nil {
			return err
		}
	}
	if err := r.Sales.Create(ctx, sale); err != nil {
		return err
	}
	if !sale.Total.IsPositive() {
		return nil
	}
	paidAt := sale.CreatedAt
	entry := &entity.FinancialEntry{
		ID:            uuid.New().String(),
		CompanyID:     sale.CompanyID,
		Type:          entity.EntryReceivable,
		Description:   fmt.Sprintf("Venda #%d", sale.Number),
		Amount:        sale.Total,
		DueDate:       sale.CreatedAt,
		Status:        entity.EntryStatusPaid,
		CustomerID:    sale.CustomerID,
		SaleID:        sale.ID,
		PaymentMethod: sale.PaymentMethod,
		PaidAt:        &paidAt,
		CreatedAt:     sale.CreatedAt,
		UpdatedAt:     sale.CreatedAt,
	}
	if sale.PaymentMethod == entity.PaymentBoleto {
		entry.Status = entity.EntryStatusOpen
		entry.PaidAt = nil
		entry.DueDate = sale.CreatedAt.AddDate(0, 0, defaultBoletoDays)
		if dueDate != nil {
			entry.DueDate = dueDate.UTC()
		}
	}
	return r.Financial.Create(ctx, entry)
}

// Cancel devuelve el stock al costo promedio vigente y revierte el financiero: las cuentas
// abiertas se cancelan y las cobradas generan un estorno a pagar. Con NF-e activa no se cancela.
func (uc *UseCase) Cancel(ctx context.Context, companyID, userID, id string) (*dto.SaleResponse, error) {
	sale, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if sale.Status != entity.SaleStatusConfirmed {
		return nil, domain.ErrInvalidTransition
	}

	now := uc.now().UTC()
	err = uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		// El cambio de estado condicionado va primero: bloquea la fila y descarta una
		// cancelación concurrente antes de mover stock.
		sale.Status = entity.SaleStatusCancelled
		sale.CancelledAt = &now
		sale.UpdatedAt = now
		if err := r.Sales.UpdateStatus(ctx, sale, entity.SaleStatusConfirmed); err != nil {
			return err
		}
		invs, err := r.Invoices.ListBySale(ctx, sale.ID)
		if err != nil {
			return err
		}
		for _, inv := range invs {
			if inv.IsActive() {
				return domain.Detail(domain.ErrConflict, "venda possui NF-e %s; cancele a nota primeiro", inv.Status)
			}
		}
		for _, it := range sale.Items {
			p, err := r.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.ErrNotFound
			}
			if _, err := inventory.ApplyIN(ctx, r, inventory.Line{
				Product:       p,
				WarehouseID:   sale.WarehouseID,
				UserID:        userID,
				Quantity:      it.Quantity,
				UnitCost:      p.Cost,
				TransactionID: sale.ID,
				Source:        entity.MovementSourceSaleCancel,
				Now:           now,
			}); err != nil {
				return err
			}
		}
		entries, err := r.Financial.ListBySale(ctx, sale.ID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			switch {
			case e.Type == entity.EntryReceivable && e.Status == entity.EntryStatusOpen:
				e.Status = entity.EntryStatusCancelled
				e.UpdatedAt = now
				if err := r.Financial.Update(ctx, e); err != nil {
					return err
				}
			case e.Type == entity.EntryReceivable && e.Status == entity.EntryStatusPaid:
				refund := &entity.FinancialEntry{
					ID:            uuid.New().String(),
					CompanyID:     sale.CompanyID,
					Type:          entity.EntryPayable,
					Description:   fmt.Sprintf("Estorno venda #%d", sale.Number),
					Amount:        e.Amount,
					DueDate:       now,
					Status:        entity.EntryStatusOpen,
					CustomerID:    sale.CustomerID,
					SaleID:        sale.ID,
					PaymentMethod: e.PaymentMethod,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if err := r.Financial.Create(ctx, refund); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.cache.InvalidateCompany(ctx, companyID, usecase.DashboardResource)
	uc.log.Info().Str("sale_id", sale.ID).Int64("number", sale.Number).Msg("venta cancelada")
	return ToSaleResponse(sale), nil
}

// Get venta de la empresa.
func (uc *UseCase) Get(ctx context.Context, companyID, id string) (*dto.SaleResponse, error) {
	sale, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(sale), nil
}

func (uc *UseCase) get(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	sale, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// List ventas con filtros; from/to en YYYY-MM-DD (to incluye el día completo).
func (uc *UseCase) List(ctx context.Context, companyID string, in dto.SaleFilterRequest) (*dto.SaleListResponse, error) {
	in.DefaultPage()
	f := repository.SaleFilter{
		Status:     in.Status,
		CustomerID: in.CustomerID,
		Channel:    in.Channel,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if in.From != "" {
		t, err := time.Parse("2006-01-02", in.From)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		f.From = &t
	}
	if in.To != "" {
		t, err := time.Parse("2006-01-02", in.To)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.To = &end
	}
	list, err := uc.sales.List(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *ToSaleResponse(s))
	}
	return &dto.SaleListResponse{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

// Receipt PDF del comprobante de la venta; incluye la NF-e autorizada si existe.
func (uc *UseCase) Receipt(ctx context.Context, companyID, id string) ([]byte, string, error) {
	if uc.receipts == nil {
		return nil, "", domain.ErrNotConfigured
	}
	sale, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}
	data := ports.ReceiptData{Company: company, Sale: sale, Products: map[string]*entity.Product{}}
	if sale.CustomerID != "" {
		if data.Customer, err = uc.customers.GetByID(ctx, sale.CustomerID); err != nil {
			return nil, "", err
		}
	}
	for _, it := range sale.Items {
		p, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, "", err
		}
		if p != nil {
			data.Products[p.ID] = p
		}
	}
	invs, err := uc.invoices.ListBySale(ctx, sale.ID)
	if err != nil {
		return nil, "", err
	}
	for _, inv := range invs {
		if inv.Status == entity.NFeStatusAuthorized {
			data.Invoice = inv
			break
		}
	}
	pdf, err := uc.receipts.RenderSaleReceipt(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("sales: generar comprobante: %w", err)
	}
	return pdf, fmt.Sprintf("venda-%06d.pdf", sale.Number), nil
}

// ToSaleResponse convierte la entidad a DTO.
func ToSaleResponse(s *entity.Sale) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:            s.ID,
		Number:        s.Number,
		CustomerID:    s.CustomerID,
		WarehouseID:   s.WarehouseID,
		Status:        s.Status,
		Channel:       s.Channel,
		ExternalID:    s.ExternalID,
		PaymentMethod: s.PaymentMethod,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		Notes:         s.Notes,
		Items:         make([]dto.SaleItemResponse, 0, len(s.Items)),
		CreatedAt:     s.CreatedAt,
		CancelledAt:   s.CancelledAt,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice, Total: it.Total,
		})
	}
	return out
}
