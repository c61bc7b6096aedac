package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo eventos de auditoría y ejecuciones del análisis de código.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Log registra un evento. Los eventos sin empresa (login fallido con email desconocido) guardan NULL.
func (r *AuditRepo) Log(ctx context.Context, l *entity.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_logs (id, company_id, user_id, action, resource, resource_id, ip, status_code, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, nullString(l.CompanyID), nullString(l.UserID), l.Action, l.Resource, l.ResourceID, l.IP, l.StatusCode, jsonOrNull(l.Metadata), l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListRecent últimos eventos de la empresa.
func (r *AuditRepo) ListRecent(ctx context.Context, companyID string, limit int) ([]*entity.AuditLog, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, user_id, action, resource, resource_id, ip, status_code, metadata, created_at
		FROM audit_logs WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.AuditLog, error) {
		var l entity.AuditLog
		var company, user *string
		var metadata []byte
		if err := row.Scan(&l.ID, &company, &user, &l.Action, &l.Resource, &l.ResourceID, &l.IP, &l.StatusCode, &metadata, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Metadata = metadata
		l.CompanyID = derefString(company)
		l.UserID = derefString(user)
		return &l, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}
	return list, nil
}

// CountByAction eventos por acción desde since.
func (r *AuditRepo) CountByAction(ctx context.Context, companyID string, since time.Time) ([]entity.ActionCount, error) {
	rows, err := r.q.Query(ctx, `
		SELECT action, COUNT(*) AS n FROM audit_logs
		WHERE company_id = $1 AND created_at >= $2
		GROUP BY action ORDER BY n DESC, action`, companyID, since)
	if err != nil {
		return nil, fmt.Errorf("count audit actions: %w", err)
	}
	defer rows.Close()
	var list []entity.ActionCount
	for rows.Next() {
		var ac entity.ActionCount
		if err := rows.Scan(&ac.Action, &ac.Count); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		list = append(list, ac)
	}
	return list, rows.Err()
}

const auditRunColumns = `id, company_id, requested_by, source_dir, files_scanned, unused_files, unused_exports,
	report, status, error, started_at, finished_at`

func scanAuditRun(row pgx.Row) (*entity.AuditRun, error) {
	var a entity.AuditRun
	var requestedBy *string
	var report []byte
	if err := row.Scan(&a.ID, &a.CompanyID, &requestedBy, &a.SourceDir, &a.FilesScanned, &a.UnusedFiles, &a.UnusedExports,
		&report, &a.Status, &a.Error, &a.StartedAt, &a.FinishedAt); err != nil {
		return nil, err
	}
	a.Report = report
	a.RequestedBy = derefString(requestedBy)
	return &a, nil
}

// CreateRun persiste el resultado de una ejecución.
func (r *AuditRepo) CreateRun(ctx context.Context, a *entity.AuditRun) error {
	_, err := r.q.Exec(ctx, `INSERT INTO audit_runs (`+auditRunColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.CompanyID, nullString(a.RequestedBy), a.SourceDir, a.FilesScanned, a.UnusedFiles, a.UnusedExports,
		jsonOrNull(a.Report), a.Status, a.Error, a.StartedAt, a.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert audit run: %w", err)
	}
	return nil
}

// GetRun obtiene una ejecución por ID.
func (r *AuditRepo) GetRun(ctx context.Context, id string) (*entity.AuditRun, error) {
	a, err := scanAuditRun(r.q.QueryRow(ctx, `SELECT `+auditRunColumns+` FROM audit_runs WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get audit run: %w", err)
	}
	return a, nil
}

// ListRuns historial de ejecuciones de la empresa.
func (r *AuditRepo) ListRuns(ctx context.Context, companyID string, limit int) ([]*entity.AuditRun, error) {
	rows, err := r.q.Query(ctx, `SELECT `+auditRunColumns+` FROM audit_runs
		WHERE company_id = $1 ORDER BY started_at DESC LIMIT $2`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit runs: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.AuditRun, error) {
		return scanAuditRun(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit run: %w", err)
	}
	return list, nil
}
