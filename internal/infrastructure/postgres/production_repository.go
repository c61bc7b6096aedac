package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)

// ProductionOrderRepo órdenes de producción sobre PostgreSQL (pool o tx).
// Los insumos se guardan como JSONB en la misma fila.
type ProductionOrderRepo struct {
	q Querier
}

// NewProductionOrderRepository construye el adaptador.
func NewProductionOrderRepository(q Querier) *ProductionOrderRepo {
	return &ProductionOrderRepo{q: q}
}

const productionColumns = `id, company_id, number, product_id, warehouse_id, quantity, status, materials,
	unit_cost, notes, created_by, started_at, completed_at, created_at, updated_at`

type materialRow struct {
	ProductID       string `json:"product_id"`
	QuantityPerUnit string `json:"quantity_per_unit"`
}

func encodeMaterials(ms []entity.ProductionMaterial) ([]byte, error) {
	rows := make([]materialRow, len(ms))
	for i, m := range ms {
		rows[i] = materialRow{ProductID: m.ProductID, QuantityPerUnit: m.QuantityPerUnit.String()}
	}
	return json.Marshal(rows)
}

func scanProductionOrder(row pgx.Row) (*entity.ProductionOrder, error) {
	var o entity.ProductionOrder
	var materials []byte
	var createdBy *string
	if err := row.Scan(&o.ID, &o.CompanyID, &o.Number, &o.ProductID, &o.WarehouseID, &o.Quantity, &o.Status, &materials,
		&o.UnitCost, &o.Notes, &createdBy, &o.StartedAt, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.CreatedBy = derefString(createdBy)
	var rows []materialRow
	if err := json.Unmarshal(materials, &rows); err != nil {
		return nil, fmt.Errorf("decode materials: %w", err)
	}
	for _, m := range rows {
		var pm entity.ProductionMaterial
		pm.ProductID = m.ProductID
		if err := pm.QuantityPerUnit.UnmarshalText([]byte(m.QuantityPerUnit)); err != nil {
			return nil, fmt.Errorf("decode material quantity: %w", err)
		}
		o.Materials = append(o.Materials, pm)
	}
	return &o, nil
}

// NextNumber incrementa el consecutivo de órdenes de la empresa.
func (r *ProductionOrderRepo) NextNumber(ctx context.Context, companyID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO production_sequences (company_id, last_value) VALUES ($1, 1)
		ON CONFLICT (company_id) DO UPDATE SET last_value = production_sequences.last_value + 1
		RETURNING last_value`, companyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next production number: %w", err)
	}
	return n, nil
}

// Create persiste la orden.
func (r *ProductionOrderRepo) Create(ctx context.Context, o *entity.ProductionOrder) error {
	materials, err := encodeMaterials(o.Materials)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `INSERT INTO production_orders (`+productionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		o.ID, o.CompanyID, o.Number, o.ProductID, o.WarehouseID, o.Quantity, o.Status, materials,
		o.UnitCost, o.Notes, nullString(o.CreatedBy), o.StartedAt, o.CompletedAt, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert production order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID.
func (r *ProductionOrderRepo) GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	o, err := scanProductionOrder(r.q.QueryRow(ctx, `SELECT `+productionColumns+` FROM production_orders WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production order: %w", err)
	}
	return o, nil
}

// List órdenes de la empresa, opcionalmente por estado.
func (r *ProductionOrderRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.ProductionOrder, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productionColumns+` FROM production_orders
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY number DESC LIMIT $3 OFFSET $4`, companyID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list production orders: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.ProductionOrder, error) {
		return scanProductionOrder(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan production order: %w", err)
	}
	return list, nil
}

// Update persiste estado, costo resultante y fechas si la orden sigue en from.
func (r *ProductionOrderRepo) Update(ctx context.Context, o *entity.ProductionOrder, from string) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE production_orders SET status = $2, unit_cost = $3, notes = $4,
			started_at = $5, completed_at = $6, updated_at = $7
		WHERE id = $1 AND status = $8`,
		o.ID, o.Status, o.UnitCost, o.Notes, o.StartedAt, o.CompletedAt, o.UpdatedAt, from)
	if err != nil {
		return fmt.Errorf("update production order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}
