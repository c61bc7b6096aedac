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

var _ repository.ContractRepository = (*ContractRepo)(nil)

// ContractRepo contratos sobre PostgreSQL.
type ContractRepo struct {
	q Querier
}

// NewContractRepository construye el adaptador.
func NewContractRepository(q Querier) *ContractRepo {
	return &ContractRepo{q: q}
}

const contractColumns = `id, company_id, customer_id, number, title, monthly_value, start_date, end_date,
	status, auto_renew, notes, created_at, updated_at`

func scanContract(row pgx.Row) (*entity.Contract, error) {
	var c entity.Contract
	if err := row.Scan(&c.ID, &c.CompanyID, &c.CustomerID, &c.Number, &c.Title, &c.MonthlyValue, &c.StartDate, &c.EndDate,
		&c.Status, &c.AutoRenew, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un contrato. Número repetido en la empresa -> domain.ErrDuplicate.
func (r *ContractRepo) Create(ctx context.Context, c *entity.Contract) error {
	_, err := r.q.Exec(ctx, `INSERT INTO contracts (`+contractColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		c.ID, c.CompanyID, c.CustomerID, c.Number, c.Title, c.MonthlyValue, c.StartDate, c.EndDate,
		c.Status, c.AutoRenew, c.Notes, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

// GetByID obtiene un contrato por ID.
func (r *ContractRepo) GetByID(ctx context.Context, id string) (*entity.Contract, error) {
	c, err := scanContract(r.q.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return c, nil
}

func (r *ContractRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Contract, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Contract, error) {
		return scanContract(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan contract: %w", err)
	}
	return list, nil
}

// List contratos de la empresa, opcionalmente por estado.
func (r *ContractRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.Contract, error) {
	return r.list(ctx, `SELECT `+contractColumns+` FROM contracts
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY end_date LIMIT $3 OFFSET $4`, companyID, status, limit, offset)
}

// ListEndingBetween contratos activos que vencen en [from, to].
func (r *ContractRepo) ListEndingBetween(ctx context.Context, companyID string, from, to time.Time) ([]*entity.Contract, error) {
	return r.list(ctx, `SELECT `+contractColumns+` FROM contracts
		WHERE company_id = $1 AND status = 'active' AND end_date BETWEEN $2 AND $3
		ORDER BY end_date`, companyID, from, to)
}

// ListActiveEndedBefore contratos activos vencidos antes de ref; companyID vacío = todas las empresas.
func (r *ContractRepo) ListActiveEndedBefore(ctx context.Context, companyID string, ref time.Time) ([]*entity.Contract, error) {
	return r.list(ctx, `SELECT `+contractColumns+` FROM contracts
		WHERE ($1 = '' OR company_id::text = $1) AND status = 'active' AND end_date < $2
		ORDER BY end_date`, companyID, ref)
}

// Update persiste estado, vigencia y datos comerciales.
func (r *ContractRepo) Update(ctx context.Context, c *entity.Contract) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE contracts SET title = $2, monthly_value = $3, start_date = $4, end_date = $5,
			status = $6, auto_renew = $7, notes = $8, updated_at = $9
		WHERE id = $1`,
		c.ID, c.Title, c.MonthlyValue, c.StartDate, c.EndDate, c.Status, c.AutoRenew, c.Notes, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update contract: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
