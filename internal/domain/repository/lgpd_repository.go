package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// LGPDRepository consentimientos y solicitudes de titulares.
type LGPDRepository interface {
	CreateConsent(ctx context.Context, c *entity.Consent) error
	GetConsent(ctx context.Context, id string) (*entity.Consent, error)
	UpdateConsent(ctx context.Context, c *entity.Consent) error
	ListConsents(ctx context.Context, customerID string) ([]*entity.Consent, error)

	CreateRequest(ctx context.Context, r *entity.DataSubjectRequest) error
	GetRequest(ctx context.Context, id string) (*entity.DataSubjectRequest, error)
	UpdateRequest(ctx context.Context, r *entity.DataSubjectRequest) error
	ListRequests(ctx context.Context, companyID, status string) ([]*entity.DataSubjectRequest, error)
}
