package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.FinancialEntryRepository = (*FinancialEntryRepo)(nil)

// FinancialEntryRepo cuentas por cobrar y por pagar sobre PostgreSQL (pool o tx).
type FinancialEntryRepo struct {
	q Querier
}

// NewFinancialEntryRepository construye el adaptador.
func NewFinancialEntryRepository(q Querier) *FinancialEntryRepo {
	return &FinancialEntryRepo{q: q}
}

const financialColumns = `id, company_id, type, description, amount, due_date, status,
	customer_id, sale_id, contract_id, payment_method, paid_at, created_at, updated_at`

func scanFinancialEntry(row pgx.Row) (*entity.FinancialEntry, error) {
	var e entity.FinancialEntry
	var customerID, saleID, contractID *string
	if err := row.Scan(&e.ID, &e.CompanyID, &e.Type, &e.Description, &e.Amount, &e.DueDate, &e.Status,
		&customerID, &saleID, &contractID, &e.PaymentMethod, &e.PaidAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.CustomerID = derefString(customerID)
	e.SaleID = derefString(saleID)
	e.ContractID = derefString(contractID)
	return &e, nil
}

// Create persiste un lanzamiento.
func (r *FinancialEntryRepo) Create(ctx context.Context, e *entity.FinancialEntry) error {
	_, err := r.q.Exec(ctx, `INSERT INTO financial_entries (`+financialColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		e.ID, e.CompanyID, e.Type, e.Description, e.Amount, e.DueDate, e.Status,
		nullString(e.CustomerID), nullString(e.SaleID), nullString(e.ContractID), e.PaymentMethod, e.PaidAt, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert financial entry: %w", err)
	}
	return nil
}

// GetByID obtiene un lanzamiento por ID.
func (r *FinancialEntryRepo) GetByID(ctx context.Context, id string) (*entity.FinancialEntry, error) {
	e, err := scanFinancialEntry(r.q.QueryRow(ctx, `SELECT `+financialColumns+` FROM financial_entries WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get financial entry: %w", err)
	}
	return e, nil
}

func (r *FinancialEntryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.FinancialEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list financial entries: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.FinancialEntry, error) {
		return scanFinancialEntry(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan financial entry: %w", err)
	}
	return list, nil
}

// List lanzamientos con filtros, ordenados por vencimiento.
func (r *FinancialEntryRepo) List(ctx context.Context, companyID string, f repository.FinancialFilter) ([]*entity.FinancialEntry, error) {
	a := &argList{}
	query := `SELECT ` + financialColumns + ` FROM financial_entries WHERE company_id = ` + a.add(companyID)
	if f.Type != "" {
		query += ` AND type = ` + a.add(f.Type)
	}
	if f.Status != "" {
		query += ` AND status = ` + a.add(f.Status)
	}
	if f.DueFrom != nil {
		query += ` AND due_date >= ` + a.add(*f.DueFrom)
	}
	if f.DueTo != nil {
		query += ` AND due_date <= ` + a.add(*f.DueTo)
	}
	if f.OnlyOverdue {
		query += ` AND status = 'open' AND due_date < CURRENT_DATE`
	}
	query += ` ORDER BY due_date LIMIT ` + a.add(f.Limit) + ` OFFSET ` + a.add(f.Offset)
	return r.list(ctx, query, a.args...)
}

// ListBySale lanzamientos generados por una venta.
func (r *FinancialEntryRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.FinancialEntry, error) {
	return r.list(ctx, `SELECT `+financialColumns+` FROM financial_entries WHERE sale_id = $1`, saleID)
}

// Update persiste estado y datos de pago.
func (r *FinancialEntryRepo) Update(ctx context.Context, e *entity.FinancialEntry) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE financial_entries SET description = $2, amount = $3, due_date = $4, status = $5,
			payment_method = $6, paid_at = $7, updated_at = $8
		WHERE id = $1`,
		e.ID, e.Description, e.Amount, e.DueDate, e.Status, e.PaymentMethod, e.PaidAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update financial entry: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Summary totales abiertos, vencidos y pagados en [from, to).
func (r *FinancialEntryRepo) Summary(ctx context.Context, companyID string, from, to time.Time) (*entity.CashFlowSummary, error) {
	s := &entity.CashFlowSummary{}
	err := r.q.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'receivable' AND status = 'open'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'payable' AND status = 'open'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'receivable' AND status = 'open' AND due_date < CURRENT_DATE), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'payable' AND status = 'open' AND due_date < CURRENT_DATE), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'receivable' AND status = 'paid' AND paid_at >= $2 AND paid_at < $3), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'payable' AND status = 'paid' AND paid_at >= $2 AND paid_at < $3), 0)
		FROM financial_entries WHERE company_id = $1`, companyID, from, to).
		Scan(&s.OpenReceivable, &s.OpenPayable, &s.OverdueReceivable, &s.OverduePayable, &s.ReceivedInPeriod, &s.PaidInPeriod)
	if err != nil {
		return nil, fmt.Errorf("cash flow summary: %w", err)
	}
	s.Balance = s.ReceivedInPeriod.Sub(s.PaidInPeriod)
	return s, nil
}
