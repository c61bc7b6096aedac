package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.FiscalInvoiceRepository = (*FiscalInvoiceRepo)(nil)

// FiscalInvoiceRepo NF-e sobre PostgreSQL.
type FiscalInvoiceRepo struct {
	q Querier
}

// NewFiscalInvoiceRepository construye el adaptador.
func NewFiscalInvoiceRepository(q Querier) *FiscalInvoiceRepo {
	return &FiscalInvoiceRepo{q: q}
}

const fiscalInvoiceColumns = `id, company_id, sale_id, provider_id, status, series, number, access_key, protocol,
	message, xml_key, xml_digest, issued_at, cancelled_at, created_at, updated_at`

func scanFiscalInvoice(row pgx.Row) (*entity.FiscalInvoice, error) {
	var f entity.FiscalInvoice
	if err := row.Scan(&f.ID, &f.CompanyID, &f.SaleID, &f.ProviderID, &f.Status, &f.Series, &f.Number, &f.AccessKey, &f.Protocol,
		&f.Message, &f.XMLKey, &f.XMLDigest, &f.IssuedAt, &f.CancelledAt, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create persiste la NF-e. El índice parcial uq_fiscal_invoices_active_sale impide dos activas por venta.
func (r *FiscalInvoiceRepo) Create(ctx context.Context, f *entity.FiscalInvoice) error {
	_, err := r.q.Exec(ctx, `INSERT INTO fiscal_invoices (`+fiscalInvoiceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		f.ID, f.CompanyID, f.SaleID, f.ProviderID, f.Status, f.Series, f.Number, f.AccessKey, f.Protocol,
		f.Message, f.XMLKey, f.XMLDigest, f.IssuedAt, f.CancelledAt, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert fiscal invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una NF-e por ID.
func (r *FiscalInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.FiscalInvoice, error) {
	f, err := scanFiscalInvoice(r.q.QueryRow(ctx, `SELECT `+fiscalInvoiceColumns+` FROM fiscal_invoices WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal invoice: %w", err)
	}
	return f, nil
}

func (r *FiscalInvoiceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.FiscalInvoice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fiscal invoices: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.FiscalInvoice, error) {
		return scanFiscalInvoice(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan fiscal invoice: %w", err)
	}
	return list, nil
}

// ListBySale historial de NF-e de una venta.
func (r *FiscalInvoiceRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.FiscalInvoice, error) {
	return r.list(ctx, `SELECT `+fiscalInvoiceColumns+` FROM fiscal_invoices WHERE sale_id = $1 ORDER BY created_at`, saleID)
}

// List NF-e de la empresa, opcionalmente por estado.
func (r *FiscalInvoiceRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.FiscalInvoice, error) {
	return r.list(ctx, `SELECT `+fiscalInvoiceColumns+` FROM fiscal_invoices
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, companyID, status, limit, offset)
}

// Update persiste el estado devuelto por el proveedor.
func (r *FiscalInvoiceRepo) Update(ctx context.Context, f *entity.FiscalInvoice) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE fiscal_invoices SET provider_id = $2, status = $3, series = $4, number = $5, access_key = $6,
			protocol = $7, message = $8, xml_key = $9, xml_digest = $10, issued_at = $11, cancelled_at = $12, updated_at = $13
		WHERE id = $1`,
		f.ID, f.ProviderID, f.Status, f.Series, f.Number, f.AccessKey,
		f.Protocol, f.Message, f.XMLKey, f.XMLDigest, f.IssuedAt, f.CancelledAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update fiscal invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
