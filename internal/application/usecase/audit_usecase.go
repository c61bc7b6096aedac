package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/deadcode"
)

// Estados de una ejecución de auditoría.
const (
	AuditRunCompleted = "completed"
	AuditRunFailed    = "failed"
)

// AuditUseCase eventos de auditoría y ejecuciones del escaneo de código muerto.
type AuditUseCase struct {
	repo      repository.AuditRepository
	scanner   ports.DeadCodeScanner
	sourceDir string
	log       zerolog.Logger
	now       func() time.Time
}

// NewAuditUseCase construye el caso de uso. sourceDir es el árbol que analiza executar-auditoria.
func NewAuditUseCase(repo repository.AuditRepository, scanner ports.DeadCodeScanner, sourceDir string, log zerolog.Logger) *AuditUseCase {
	return &AuditUseCase{repo: repo, scanner: scanner, sourceDir: sourceDir, log: log, now: time.Now}
}

// Record guarda un evento; los errores se registran en el log y no se propagan al request.
func (uc *AuditUseCase) Record(ctx context.Context, l *entity.AuditLog) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = uc.now().UTC()
	}
	if err := uc.repo.Log(ctx, l); err != nil {
		uc.log.Error().Err(err).Str("action", l.Action).Msg("no se pudo guardar evento de auditoría")
	}
}

// Run ejecuta el escaneo sobre el directorio configurado y persiste el resumen.
// Un escaneo fallido también queda registrado (status failed).
func (uc *AuditUseCase) Run(ctx context.Context, companyID, userID string) (*dto.AuditRunResponse, error) {
	if uc.sourceDir == "" || uc.scanner == nil {
		return nil, domain.ErrNotConfigured
	}
	run := &entity.AuditRun{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		RequestedBy: userID,
		SourceDir:   uc.sourceDir,
		StartedAt:   uc.now().UTC(),
	}
	report, scanErr := uc.scanner.Scan(ctx, deadcode.DefaultOptions(uc.sourceDir))
	run.FinishedAt = uc.now().UTC()
	if scanErr != nil {
		run.Status = AuditRunFailed
		run.Error = scanErr.Error()
		uc.log.Warn().Err(scanErr).Str("source_dir", uc.sourceDir).Msg("auditoría de código falló")
	} else {
		raw, err := json.Marshal(report)
		if err != nil {
			return nil, err
		}
		run.Status = AuditRunCompleted
		run.FilesScanned = report.FilesScanned
		run.UnusedFiles = len(report.UnusedFiles)
		run.UnusedExports = len(report.UnusedExports)
		run.Report = raw
	}
	if err := uc.repo.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	uc.log.Info().Str("run_id", run.ID).Str("status", run.Status).
		Int("unused_files", run.UnusedFiles).Int("unused_exports", run.UnusedExports).
		Msg("auditoría de código ejecutada")
	return toAuditRunResponse(run, true), nil
}

// History últimas ejecuciones de la empresa (sin el reporte completo).
func (uc *AuditUseCase) History(ctx context.Context, companyID string, limit int) ([]dto.AuditRunResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := uc.repo.ListRuns(ctx, companyID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditRunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, *toAuditRunResponse(r, false))
	}
	return out, nil
}

// Get ejecución con el reporte completo.
func (uc *AuditUseCase) Get(ctx context.Context, companyID, id string) (*dto.AuditRunResponse, error) {
	run, err := uc.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil || run.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return toAuditRunResponse(run, true), nil
}

func toAuditRunResponse(r *entity.AuditRun, withReport bool) *dto.AuditRunResponse {
	out := &dto.AuditRunResponse{
		ID:            r.ID,
		SourceDir:     r.SourceDir,
		Status:        r.Status,
		FilesScanned:  r.FilesScanned,
		UnusedFiles:   r.UnusedFiles,
		UnusedExports: r.UnusedExports,
		Error:         r.Error,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
	}
	if withReport {
		out.Report = r.Report
	}
	return out
}
