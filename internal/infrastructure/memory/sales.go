package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository          = (*SaleRepo)(nil)
	_ repository.FiscalInvoiceRepository = (*FiscalInvoiceRepo)(nil)
	_ repository.DashboardRepository     = (*DashboardRepo)(nil)
)

// SaleRepo ventas.
type SaleRepo struct{ s *Store }

// Sales repositorio de ventas.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

func copySale(s entity.Sale) *entity.Sale {
	s.Items = append([]entity.SaleItem(nil), s.Items...)
	return &s
}

func (r *SaleRepo) NextNumber(_ context.Context, companyID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.saleSeq[companyID]++
	return r.s.saleSeq[companyID], nil
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sale.ExternalID != "" {
		for _, e := range r.s.sales {
			if e.CompanyID == sale.CompanyID && e.Channel == sale.Channel && e.ExternalID == sale.ExternalID {
				return domain.ErrDuplicate
			}
		}
	}
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	for i := range sale.Items {
		if sale.Items[i].ID == "" {
			sale.Items[i].ID = uuid.New().String()
		}
		sale.Items[i].SaleID = sale.ID
	}
	r.s.sales[sale.ID] = *copySale(*sale)
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return copySale(s), nil
}

// GetForUpdate en memoria equivale a GetByID: el TxRunner ya serializa las transacciones.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) GetByExternalID(_ context.Context, companyID, channel, externalID string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, s := range r.s.sales {
		if s.CompanyID == companyID && s.Channel == channel && s.ExternalID == externalID {
			return copySale(s), nil
		}
	}
	return nil, nil
}

func (r *SaleRepo) List(_ context.Context, companyID string, f repository.SaleFilter) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Sale
	for _, s := range r.s.sales {
		if s.CompanyID != companyID ||
			(f.Status != "" && s.Status != f.Status) ||
			(f.CustomerID != "" && s.CustomerID != f.CustomerID) ||
			(f.Channel != "" && s.Channel != f.Channel) ||
			(f.From != nil && s.CreatedAt.Before(*f.From)) ||
			(f.To != nil && s.CreatedAt.After(*f.To)) {
			continue
		}
		list = append(list, copySale(s))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Number > list[j].Number })
	return page(list, f.Limit, f.Offset), nil
}

func (r *SaleRepo) UpdateStatus(_ context.Context, sale *entity.Sale, from string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sales[sale.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if s.Status != from {
		return domain.ErrInvalidTransition
	}
	s.Status = sale.Status
	s.CancelledAt = sale.CancelledAt
	s.UpdatedAt = sale.UpdatedAt
	r.s.sales[sale.ID] = s
	return nil
}

func (r *SaleRepo) ListByCustomer(_ context.Context, customerID string) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Sale
	for _, s := range r.s.sales {
		if s.CustomerID == customerID {
			list = append(list, copySale(s))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Number < list[j].Number })
	return list, nil
}

// FiscalInvoiceRepo NF-e.
type FiscalInvoiceRepo struct{ s *Store }

// FiscalInvoices repositorio de NF-e.
func (s *Store) FiscalInvoices() *FiscalInvoiceRepo { return &FiscalInvoiceRepo{s: s} }

func (r *FiscalInvoiceRepo) Create(_ context.Context, inv *entity.FiscalInvoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.invoices {
		if e.SaleID == inv.SaleID && e.IsActive() {
			return domain.ErrDuplicate
		}
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r *FiscalInvoiceRepo) GetByID(_ context.Context, id string) (*entity.FiscalInvoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *FiscalInvoiceRepo) ListBySale(_ context.Context, saleID string) ([]*entity.FiscalInvoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.FiscalInvoice
	for _, inv := range r.s.invoices {
		if inv.SaleID == saleID {
			inv := inv
			list = append(list, &inv)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r *FiscalInvoiceRepo) List(_ context.Context, companyID, status string, limit, offset int) ([]*entity.FiscalInvoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.FiscalInvoice
	for _, inv := range r.s.invoices {
		if inv.CompanyID == companyID && (status == "" || inv.Status == status) {
			inv := inv
			list = append(list, &inv)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

func (r *FiscalInvoiceRepo) Update(_ context.Context, inv *entity.FiscalInvoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.invoices[inv.ID] = *inv
	return nil
}

// DashboardRepo agregados calculados sobre el store.
type DashboardRepo struct{ s *Store }

// Dashboard repositorio de agregados.
func (s *Store) Dashboard() *DashboardRepo { return &DashboardRepo{s: s} }

func (r *DashboardRepo) SalesTotals(_ context.Context, companyID string, from, to time.Time) (repository.SalesTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := repository.SalesTotals{Total: decimal.Zero}
	for _, s := range r.s.sales {
		if s.CompanyID == companyID && s.Status == entity.SaleStatusConfirmed && !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
			out.Count++
			out.Total = out.Total.Add(s.Total)
		}
	}
	return out, nil
}

func (r *DashboardRepo) TopProducts(_ context.Context, companyID string, from, to time.Time, limit int) ([]repository.TopProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	acc := map[string]*repository.TopProduct{}
	for _, s := range r.s.sales {
		if s.CompanyID != companyID || s.Status != entity.SaleStatusConfirmed || s.CreatedAt.Before(from) || !s.CreatedAt.Before(to) {
			continue
		}
		for _, it := range s.Items {
			tp, ok := acc[it.ProductID]
			if !ok {
				p := r.s.products[it.ProductID]
				tp = &repository.TopProduct{ProductID: it.ProductID, SKU: p.SKU, Name: p.Name}
				acc[it.ProductID] = tp
			}
			tp.Quantity = tp.Quantity.Add(it.Quantity)
			tp.Revenue = tp.Revenue.Add(it.Total)
		}
	}
	list := make([]repository.TopProduct, 0, len(acc))
	for _, tp := range acc {
		list = append(list, *tp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Revenue.GreaterThan(list[j].Revenue) })
	return page(list, limit, 0), nil
}

func (r *DashboardRepo) NFeCountByStatus(_ context.Context, companyID string) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]int{}
	for _, inv := range r.s.invoices {
		if inv.CompanyID == companyID {
			out[inv.Status]++
		}
	}
	return out, nil
}
