package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.LGPDRepository = (*LGPDRepo)(nil)

// LGPDRepo consentimientos y solicitudes de titulares sobre PostgreSQL.
type LGPDRepo struct {
	q Querier
}

// NewLGPDRepository construye el adaptador.
func NewLGPDRepository(q Querier) *LGPDRepo {
	return &LGPDRepo{q: q}
}

const consentColumns = `id, company_id, customer_id, purpose, legal_basis, source, granted_at, revoked_at`

func scanConsent(row pgx.Row) (*entity.Consent, error) {
	var c entity.Consent
	if err := row.Scan(&c.ID, &c.CompanyID, &c.CustomerID, &c.Purpose, &c.LegalBasis, &c.Source, &c.GrantedAt, &c.RevokedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateConsent registra un consentimiento.
func (r *LGPDRepo) CreateConsent(ctx context.Context, c *entity.Consent) error {
	_, err := r.q.Exec(ctx, `INSERT INTO lgpd_consents (`+consentColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.CompanyID, c.CustomerID, c.Purpose, c.LegalBasis, c.Source, c.GrantedAt, c.RevokedAt)
	if err != nil {
		return fmt.Errorf("insert consent: %w", err)
	}
	return nil
}

// GetConsent obtiene un consentimiento por ID.
func (r *LGPDRepo) GetConsent(ctx context.Context, id string) (*entity.Consent, error) {
	c, err := scanConsent(r.q.QueryRow(ctx, `SELECT `+consentColumns+` FROM lgpd_consents WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get consent: %w", err)
	}
	return c, nil
}

// UpdateConsent persiste la revocación.
func (r *LGPDRepo) UpdateConsent(ctx context.Context, c *entity.Consent) error {
	cmd, err := r.q.Exec(ctx, `UPDATE lgpd_consents SET revoked_at = $2 WHERE id = $1`, c.ID, c.RevokedAt)
	if err != nil {
		return fmt.Errorf("update consent: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListConsents consentimientos del titular.
func (r *LGPDRepo) ListConsents(ctx context.Context, customerID string) ([]*entity.Consent, error) {
	rows, err := r.q.Query(ctx, `SELECT `+consentColumns+` FROM lgpd_consents WHERE customer_id = $1 ORDER BY granted_at`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Consent, error) {
		return scanConsent(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan consent: %w", err)
	}
	return list, nil
}

const requestColumns = `id, company_id, customer_id, type, status, result, reason, requested_by, created_at, completed_at`

func scanRequest(row pgx.Row) (*entity.DataSubjectRequest, error) {
	var d entity.DataSubjectRequest
	var requestedBy *string
	var result []byte
	if err := row.Scan(&d.ID, &d.CompanyID, &d.CustomerID, &d.Type, &d.Status, &result, &d.Reason, &requestedBy,
		&d.CreatedAt, &d.CompletedAt); err != nil {
		return nil, err
	}
	d.Result = result
	d.RequestedBy = derefString(requestedBy)
	return &d, nil
}

func jsonOrNull(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

// CreateRequest registra una solicitud del titular.
func (r *LGPDRepo) CreateRequest(ctx context.Context, d *entity.DataSubjectRequest) error {
	_, err := r.q.Exec(ctx, `INSERT INTO lgpd_requests (`+requestColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.CompanyID, d.CustomerID, d.Type, d.Status, jsonOrNull(d.Result), d.Reason, nullString(d.RequestedBy),
		d.CreatedAt, d.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert data request: %w", err)
	}
	return nil
}

// GetRequest obtiene una solicitud por ID.
func (r *LGPDRepo) GetRequest(ctx context.Context, id string) (*entity.DataSubjectRequest, error) {
	d, err := scanRequest(r.q.QueryRow(ctx, `SELECT `+requestColumns+` FROM lgpd_requests WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get data request: %w", err)
	}
	return d, nil
}

// UpdateRequest persiste el resultado del procesamiento.
func (r *LGPDRepo) UpdateRequest(ctx context.Context, d *entity.DataSubjectRequest) error {
	cmd, err := r.q.Exec(ctx, `UPDATE lgpd_requests SET status = $2, result = $3, reason = $4, completed_at = $5 WHERE id = $1`,
		d.ID, d.Status, jsonOrNull(d.Result), d.Reason, d.CompletedAt)
	if err != nil {
		return fmt.Errorf("update data request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListRequests solicitudes de la empresa, opcionalmente por estado.
func (r *LGPDRepo) ListRequests(ctx context.Context, companyID, status string) ([]*entity.DataSubjectRequest, error) {
	rows, err := r.q.Query(ctx, `SELECT `+requestColumns+` FROM lgpd_requests
		WHERE company_id = $1 AND ($2 = '' OR status = $2) ORDER BY created_at`, companyID, status)
	if err != nil {
		return nil, fmt.Errorf("list data requests: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.DataSubjectRequest, error) {
		return scanRequest(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan data request: %w", err)
	}
	return list, nil
}
