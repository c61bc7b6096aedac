// Package production órdenes de producción: consumo de insumos y entrada del producto terminado.
package production

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/cache"
)

// UseCase ciclo de vida de la orden.
type UseCase struct {
	txRunner   repository.TxRunner
	orders     repository.ProductionOrderRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	cache      *cache.Cache
	log        zerolog.Logger
	now        func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner repository.TxRunner, orders repository.ProductionOrderRepository, products repository.ProductRepository,
	warehouses repository.WarehouseRepository, c *cache.Cache, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, orders: orders, products: products, warehouses: warehouses, cache: c, log: log, now: time.Now}
}

// Create registra una orden planned. El producto terminado no puede figurar como insumo.
func (uc *UseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateProductionOrderRequest) (*dto.ProductionOrderResponse, error) {
	if !in.Quantity.IsPositive() || len(in.Materials) == 0 {
		return nil, domain.ErrInvalidInput
	}
	w, err := uc.warehouses.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if w == nil || w.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if _, err := uc.product(ctx, companyID, in.ProductID); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(in.Materials))
	materials := make([]entity.ProductionMaterial, 0, len(in.Materials))
	for _, m := range in.Materials {
		if !m.QuantityPerUnit.IsPositive() || m.ProductID == in.ProductID || seen[m.ProductID] {
			return nil, domain.ErrInvalidInput
		}
		seen[m.ProductID] = true
		if _, err := uc.product(ctx, companyID, m.ProductID); err != nil {
			return nil, err
		}
		materials = append(materials, entity.ProductionMaterial{ProductID: m.ProductID, QuantityPerUnit: m.QuantityPerUnit})
	}

	number, err := uc.orders.NextNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	o := &entity.ProductionOrder{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Number:      number,
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Status:      entity.ProductionPlanned,
		Materials:   materials,
		Notes:       in.Notes,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return ToResponse(o), nil
}

// Start planned → in_progress.
func (uc *UseCase) Start(ctx context.Context, companyID, id string) (*dto.ProductionOrderResponse, error) {
	o, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !o.CanTransition(entity.ProductionInProgress) {
		return nil, domain.ErrInvalidTransition
	}
	now := uc.now().UTC()
	o.Status = entity.ProductionInProgress
	o.StartedAt = &now
	o.UpdatedAt = now
	if err := uc.orders.Update(ctx, o, entity.ProductionPlanned); err != nil {
		return nil, err
	}
	return ToResponse(o), nil
}

// Complete in_progress → completed. En una transacción: OUT de cada insumo por
// cantidad·por_unidad y IN del terminado al costo de los insumos consumidos.
func (uc *UseCase) Complete(ctx context.Context, companyID, userID, id string) (*dto.ProductionOrderResponse, error) {
	o, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !o.CanTransition(entity.ProductionCompleted) {
		return nil, domain.ErrInvalidTransition
	}
	now := uc.now().UTC()

	if err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		// ── 1. Consumo de insumos ─────────────────────────────────────────────
		total := decimal.Zero
		for _, m := range o.Materials {
			p, err := r.Products.GetByID(ctx, m.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.Detail(domain.ErrNotFound, "insumo %s", m.ProductID)
			}
			qty := m.QuantityPerUnit.Mul(o.Quantity)
			if _, err := inventory.ApplyOUT(ctx, r, inventory.Line{
				Product: p, WarehouseID: o.WarehouseID, UserID: userID, Quantity: qty,
				TransactionID: o.ID, Source: entity.MovementSourceProduction, Now: now,
			}); err != nil {
				return err
			}
			total = total.Add(qty.Mul(p.Cost))
		}

		// ── 2. Entrada del producto terminado ─────────────────────────────────
		finished, err := r.Products.GetByID(ctx, o.ProductID)
		if err != nil {
			return err
		}
		if finished == nil {
			return domain.ErrNotFound
		}
		unitCost := total.Div(o.Quantity).Round(4)
		if _, err := inventory.ApplyIN(ctx, r, inventory.Line{
			Product: finished, WarehouseID: o.WarehouseID, UserID: userID, Quantity: o.Quantity, UnitCost: unitCost,
			TransactionID: o.ID, Source: entity.MovementSourceProduction, Now: now,
		}); err != nil {
			return err
		}

		// ── 3. Cierre de la orden ─────────────────────────────────────────────
		o.Status = entity.ProductionCompleted
		o.UnitCost = unitCost
		o.CompletedAt = &now
		o.UpdatedAt = now
		// Si otra petición completó o canceló la orden, la condición falla y todo se revierte.
		return r.Production.Update(ctx, o, entity.ProductionInProgress)
	}); err != nil {
		return nil, err
	}
	uc.cache.InvalidateCompany(ctx, companyID, usecase.DashboardResource)
	uc.log.Info().Str("order_id", o.ID).Int64("number", o.Number).Str("unit_cost", o.UnitCost.String()).Msg("orden de producción completada")
	return ToResponse(o), nil
}

// Cancel planned|in_progress → cancelled. No mueve stock.
func (uc *UseCase) Cancel(ctx context.Context, companyID, id string) (*dto.ProductionOrderResponse, error) {
	o, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !o.CanTransition(entity.ProductionCancelled) {
		return nil, domain.ErrInvalidTransition
	}
	from := o.Status
	o.Status = entity.ProductionCancelled
	o.UpdatedAt = uc.now().UTC()
	if err := uc.orders.Update(ctx, o, from); err != nil {
		return nil, err
	}
	return ToResponse(o), nil
}

// Get una orden de la empresa.
func (uc *UseCase) Get(ctx context.Context, companyID, id string) (*dto.ProductionOrderResponse, error) {
	o, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToResponse(o), nil
}

// List órdenes, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, companyID, status string, limit, offset int) ([]dto.ProductionOrderResponse, error) {
	list, err := uc.orders.List(ctx, companyID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductionOrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, *ToResponse(o))
	}
	return out, nil
}

func (uc *UseCase) get(ctx context.Context, companyID, id string) (*entity.ProductionOrder, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (uc *UseCase) product(ctx context.Context, companyID, id string) (*entity.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ToResponse entidad → DTO.
func ToResponse(o *entity.ProductionOrder) *dto.ProductionOrderResponse {
	mats := make([]dto.MaterialRequest, 0, len(o.Materials))
	for _, m := range o.Materials {
		mats = append(mats, dto.MaterialRequest{ProductID: m.ProductID, QuantityPerUnit: m.QuantityPerUnit})
	}
	return &dto.ProductionOrderResponse{
		ID:          o.ID,
		Number:      o.Number,
		ProductID:   o.ProductID,
		WarehouseID: o.WarehouseID,
		Quantity:    o.Quantity,
		Status:      o.Status,
		Materials:   mats,
		UnitCost:    o.UnitCost,
		Notes:       o.Notes,
		StartedAt:   o.StartedAt,
		CompletedAt: o.CompletedAt,
		CreatedAt:   o.CreatedAt,
	}
}
