package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y sus líneas sobre PostgreSQL (pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, company_id, customer_id, warehouse_id, number, status, channel, external_id,
	payment_method, subtotal, discount, total, notes, created_by, created_at, updated_at, cancelled_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, externalID, createdBy *string
	if err := row.Scan(&s.ID, &s.CompanyID, &customerID, &s.WarehouseID, &s.Number, &s.Status, &s.Channel, &externalID,
		&s.PaymentMethod, &s.Subtotal, &s.Discount, &s.Total, &s.Notes, &createdBy, &s.CreatedAt, &s.UpdatedAt, &s.CancelledAt); err != nil {
		return nil, err
	}
	s.CustomerID = derefString(customerID)
	s.ExternalID = derefString(externalID)
	s.CreatedBy = derefString(createdBy)
	return &s, nil
}

// NextNumber incrementa el consecutivo de la empresa; la fila queda bloqueada hasta el fin de la tx.
func (r *SaleRepo) NextNumber(ctx context.Context, companyID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO sale_sequences (company_id, last_value) VALUES ($1, 1)
		ON CONFLICT (company_id) DO UPDATE SET last_value = sale_sequences.last_value + 1
		RETURNING last_value`, companyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sale number: %w", err)
	}
	return n, nil
}

// Create inserta la cabecera y las líneas. Debe ejecutarse dentro de una transacción.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `INSERT INTO sales (`+saleColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		s.ID, s.CompanyID, nullString(s.CustomerID), s.WarehouseID, s.Number, s.Status, s.Channel, nullString(s.ExternalID),
		s.PaymentMethod, s.Subtotal, s.Discount, s.Total, s.Notes, nullString(s.CreatedBy), s.CreatedAt, s.UpdatedAt, s.CancelledAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	for i := range s.Items {
		it := &s.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.SaleID = s.ID
		if _, err := r.q.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, it.SaleID, it.ProductID, it.Quantity, it.UnitPrice, it.Total); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

func (r *SaleRepo) loadItems(ctx context.Context, s *entity.Sale) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, total
		FROM sale_items WHERE sale_id = $1 ORDER BY id`, s.ID)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	s.Items = s.Items[:0]
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Total); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, it)
	}
	return rows.Err()
}

func (r *SaleRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadItems(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID obtiene la venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate como GetByID pero con SELECT ... FOR UPDATE; usar dentro de una transacción.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

// GetByExternalID busca un pedido de marketplace ya importado.
func (r *SaleRepo) GetByExternalID(ctx context.Context, companyID, channel, externalID string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE company_id = $1 AND channel = $2 AND external_id = $3`,
		companyID, channel, externalID)
}

func (r *SaleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Sale, error) {
		return scanSale(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan sale: %w", err)
	}
	for _, s := range list {
		if err := r.loadItems(ctx, s); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// List ventas de la empresa con filtros opcionales, más recientes primero.
func (r *SaleRepo) List(ctx context.Context, companyID string, f repository.SaleFilter) ([]*entity.Sale, error) {
	a := &argList{}
	query := `SELECT ` + saleColumns + ` FROM sales WHERE company_id = ` + a.add(companyID)
	if f.Status != "" {
		query += ` AND status = ` + a.add(f.Status)
	}
	if f.CustomerID != "" {
		query += ` AND customer_id = ` + a.add(f.CustomerID)
	}
	if f.Channel != "" {
		query += ` AND channel = ` + a.add(f.Channel)
	}
	if f.From != nil {
		query += ` AND created_at >= ` + a.add(*f.From)
	}
	if f.To != nil {
		query += ` AND created_at <= ` + a.add(*f.To)
	}
	query += ` ORDER BY number DESC LIMIT ` + a.add(f.Limit) + ` OFFSET ` + a.add(f.Offset)
	return r.list(ctx, query, a.args...)
}

// UpdateStatus persiste estado y fecha de cancelación si la venta sigue en from.
// La condición sobre status serializa cancelaciones concurrentes de la misma venta.
func (r *SaleRepo) UpdateStatus(ctx context.Context, s *entity.Sale, from string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE sales SET status = $2, cancelled_at = $3, updated_at = $4 WHERE id = $1 AND status = $5`,
		s.ID, s.Status, s.CancelledAt, s.UpdatedAt, from)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// ListByCustomer todas las ventas de un cliente (exportación LGPD).
func (r *SaleRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Sale, error) {
	return r.list(ctx, `SELECT `+saleColumns+` FROM sales WHERE customer_id = $1 ORDER BY number`, customerID)
}
