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
	_ repository.FinancialEntryRepository  = (*FinancialRepo)(nil)
	_ repository.ContractRepository        = (*ContractRepo)(nil)
	_ repository.ProductionOrderRepository = (*ProductionRepo)(nil)
)

// FinancialRepo lanzamientos financieros.
type FinancialRepo struct{ s *Store }

// Financial repositorio de lanzamientos.
func (s *Store) Financial() *FinancialRepo { return &FinancialRepo{s: s} }

func (r *FinancialRepo) Create(_ context.Context, e *entity.FinancialEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.s.entries[e.ID] = *e
	return nil
}

func (r *FinancialRepo) GetByID(_ context.Context, id string) (*entity.FinancialEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *FinancialRepo) List(_ context.Context, companyID string, f repository.FinancialFilter) ([]*entity.FinancialEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	var list []*entity.FinancialEntry
	for _, e := range r.s.entries {
		if e.CompanyID != companyID ||
			(f.Type != "" && e.Type != f.Type) ||
			(f.Status != "" && e.Status != f.Status) ||
			(f.DueFrom != nil && e.DueDate.Before(*f.DueFrom)) ||
			(f.DueTo != nil && e.DueDate.After(*f.DueTo)) ||
			(f.OnlyOverdue && !e.IsOverdue(now)) {
			continue
		}
		e := e
		list = append(list, &e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].DueDate.Before(list[j].DueDate) })
	return page(list, f.Limit, f.Offset), nil
}

func (r *FinancialRepo) ListBySale(_ context.Context, saleID string) ([]*entity.FinancialEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.FinancialEntry
	for _, e := range r.s.entries {
		if e.SaleID == saleID {
			e := e
			list = append(list, &e)
		}
	}
	return list, nil
}

func (r *FinancialRepo) Update(_ context.Context, e *entity.FinancialEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.entries[e.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.entries[e.ID] = *e
	return nil
}

func (r *FinancialRepo) Summary(_ context.Context, companyID string, from, to time.Time) (*entity.CashFlowSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	out := &entity.CashFlowSummary{
		OpenReceivable: decimal.Zero, OpenPayable: decimal.Zero,
		OverdueReceivable: decimal.Zero, OverduePayable: decimal.Zero,
		ReceivedInPeriod: decimal.Zero, PaidInPeriod: decimal.Zero,
	}
	for _, e := range r.s.entries {
		if e.CompanyID != companyID {
			continue
		}
		receivable := e.Type == entity.EntryReceivable
		switch e.Status {
		case entity.EntryStatusOpen:
			if receivable {
				out.OpenReceivable = out.OpenReceivable.Add(e.Amount)
			} else {
				out.OpenPayable = out.OpenPayable.Add(e.Amount)
			}
			if e.IsOverdue(now) {
				if receivable {
					out.OverdueReceivable = out.OverdueReceivable.Add(e.Amount)
				} else {
					out.OverduePayable = out.OverduePayable.Add(e.Amount)
				}
			}
		case entity.EntryStatusPaid:
			if e.PaidAt == nil || e.PaidAt.Before(from) || !e.PaidAt.Before(to) {
				continue
			}
			if receivable {
				out.ReceivedInPeriod = out.ReceivedInPeriod.Add(e.Amount)
			} else {
				out.PaidInPeriod = out.PaidInPeriod.Add(e.Amount)
			}
		}
	}
	out.Balance = out.ReceivedInPeriod.Sub(out.PaidInPeriod)
	return out, nil
}

// ContractRepo contratos.
type ContractRepo struct{ s *Store }

// Contracts repositorio de contratos.
func (s *Store) Contracts() *ContractRepo { return &ContractRepo{s: s} }

func (r *ContractRepo) Create(_ context.Context, c *entity.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.contracts {
		if e.CompanyID == c.CompanyID && e.Number == c.Number {
			return domain.ErrDuplicate
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.s.contracts[c.ID] = *c
	return nil
}

func (r *ContractRepo) GetByID(_ context.Context, id string) (*entity.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ContractRepo) filter(match func(c entity.Contract) bool) []*entity.Contract {
	var list []*entity.Contract
	for _, c := range r.s.contracts {
		if match(c) {
			c := c
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].EndDate.Before(list[j].EndDate) })
	return list
}

func (r *ContractRepo) List(_ context.Context, companyID, status string, limit, offset int) ([]*entity.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.filter(func(c entity.Contract) bool {
		return c.CompanyID == companyID && (status == "" || c.Status == status)
	})
	return page(list, limit, offset), nil
}

func (r *ContractRepo) ListEndingBetween(_ context.Context, companyID string, from, to time.Time) ([]*entity.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(c entity.Contract) bool {
		return c.CompanyID == companyID && c.Status == entity.ContractStatusActive &&
			!c.EndDate.Before(from) && !c.EndDate.After(to)
	}), nil
}

func (r *ContractRepo) ListActiveEndedBefore(_ context.Context, companyID string, ref time.Time) ([]*entity.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(c entity.Contract) bool {
		return (companyID == "" || c.CompanyID == companyID) &&
			c.Status == entity.ContractStatusActive && c.EndDate.Before(ref)
	}), nil
}

func (r *ContractRepo) Update(_ context.Context, c *entity.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contracts[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.contracts[c.ID] = *c
	return nil
}

// ProductionRepo órdenes de producción.
type ProductionRepo struct{ s *Store }

// Production repositorio de órdenes de producción.
func (s *Store) Production() *ProductionRepo { return &ProductionRepo{s: s} }

func copyOrder(o entity.ProductionOrder) *entity.ProductionOrder {
	o.Materials = append([]entity.ProductionMaterial(nil), o.Materials...)
	return &o
}

func (r *ProductionRepo) NextNumber(_ context.Context, companyID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orderSeq[companyID]++
	return r.s.orderSeq[companyID], nil
}

func (r *ProductionRepo) Create(_ context.Context, o *entity.ProductionOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	r.s.orders[o.ID] = *copyOrder(*o)
	return nil
}

func (r *ProductionRepo) GetByID(_ context.Context, id string) (*entity.ProductionOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (r *ProductionRepo) List(_ context.Context, companyID, status string, limit, offset int) ([]*entity.ProductionOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.ProductionOrder
	for _, o := range r.s.orders {
		if o.CompanyID == companyID && (status == "" || o.Status == status) {
			list = append(list, copyOrder(o))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Number > list[j].Number })
	return page(list, limit, offset), nil
}

func (r *ProductionRepo) Update(_ context.Context, o *entity.ProductionOrder, from string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Status != from {
		return domain.ErrInvalidTransition
	}
	r.s.orders[o.ID] = *copyOrder(*o)
	return nil
}
