package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository           = (*ProductRepo)(nil)
	_ repository.StockRepository             = (*StockRepo)(nil)
	_ repository.InventoryMovementRepository = (*MovementRepo)(nil)
)

// ProductRepo productos.
type ProductRepo struct{ s *Store }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.products {
		if e.CompanyID == p.CompanyID && e.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetBySKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.CompanyID == companyID && p.SKU == sku {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) List(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Product
	for _, p := range r.s.products {
		if p.CompanyID == companyID {
			p := p
			list = append(list, &p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return page(list, limit, offset), nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, e := range r.s.products {
		if e.ID != p.ID && e.CompanyID == p.CompanyID && e.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Cost = cost
	r.s.products[productID] = p
	return nil
}

// StockRepo stock por producto y depósito.
type StockRepo struct{ s *Store }

// Stock repositorio de stock.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

func stockKey(productID, warehouseID string) string { return productID + "|" + warehouseID }

func (r *StockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stock[stockKey(productID, warehouseID)]
	if !ok {
		return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
	}
	return &st, nil
}

// GetForUpdate en memoria el bloqueo lo da la serialización del TxRunner.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.Get(ctx, productID, warehouseID)
}

func (r *StockRepo) Upsert(_ context.Context, st *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stock[stockKey(st.ProductID, st.WarehouseID)] = *st
	return nil
}

func (r *StockRepo) ListLowStock(_ context.Context, companyID string) ([]entity.LowStockItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := map[string]decimal.Decimal{}
	for _, st := range r.s.stock {
		totals[st.ProductID] = totals[st.ProductID].Add(st.Quantity)
	}
	var list []entity.LowStockItem
	for _, p := range r.s.products {
		if p.CompanyID != companyID || !p.Active || !p.MinStock.IsPositive() {
			continue
		}
		if q := totals[p.ID]; q.LessThan(p.MinStock) {
			list = append(list, entity.LowStockItem{ProductID: p.ID, SKU: p.SKU, Name: p.Name, Quantity: q, MinStock: p.MinStock})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return list, nil
}

// MovementRepo historial de movimientos.
type MovementRepo struct{ s *Store }

// Movements repositorio de movimientos.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.InventoryMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if m := r.s.movements[i]; m.ProductID == productID {
			list = append(list, &m)
		}
	}
	return page(list, limit, offset), nil
}

func (r *MovementRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.TransactionID == transactionID {
			m := m
			list = append(list, &m)
		}
	}
	return list, nil
}
