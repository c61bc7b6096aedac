package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// AuditRepository eventos de auditoría y ejecuciones de la auditoría de código.
type AuditRepository interface {
	Log(ctx context.Context, l *entity.AuditLog) error
	ListRecent(ctx context.Context, companyID string, limit int) ([]*entity.AuditLog, error)
	CountByAction(ctx context.Context, companyID string, since time.Time) ([]entity.ActionCount, error)

	CreateRun(ctx context.Context, r *entity.AuditRun) error
	GetRun(ctx context.Context, id string) (*entity.AuditRun, error)
	ListRuns(ctx context.Context, companyID string, limit int) ([]*entity.AuditRun, error)
}
