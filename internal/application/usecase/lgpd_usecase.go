package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/brdocs"
)

const anonymizedName = "Titular anonimizado"

// LGPDUseCase consentimientos y solicitudes de titulares (arts. 7 y 18 de la LGPD).
type LGPDUseCase struct {
	repo      repository.LGPDRepository
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewLGPDUseCase construye el caso de uso.
func NewLGPDUseCase(repo repository.LGPDRepository, customers repository.CustomerRepository, sales repository.SaleRepository, log zerolog.Logger) *LGPDUseCase {
	return &LGPDUseCase{repo: repo, customers: customers, sales: sales, log: log, now: time.Now}
}

func (uc *LGPDUseCase) customer(ctx context.Context, companyID, id string) (*entity.Customer, error) {
	c, err := uc.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// RecordConsent registra un consentimiento vigente.
func (uc *LGPDUseCase) RecordConsent(ctx context.Context, companyID string, in dto.RecordConsentRequest) (*dto.ConsentResponse, error) {
	c, err := uc.customer(ctx, companyID, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if c.Anonymized {
		return nil, domain.ErrConflict
	}
	consent := &entity.Consent{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		CustomerID: in.CustomerID,
		Purpose:    in.Purpose,
		LegalBasis: in.LegalBasis,
		Source:     in.Source,
		GrantedAt:  uc.now().UTC(),
	}
	if err := uc.repo.CreateConsent(ctx, consent); err != nil {
		return nil, err
	}
	return toConsentResponse(consent), nil
}

// RevokeConsent revoca un consentimiento vigente.
func (uc *LGPDUseCase) RevokeConsent(ctx context.Context, companyID, id string) (*dto.ConsentResponse, error) {
	consent, err := uc.repo.GetConsent(ctx, id)
	if err != nil {
		return nil, err
	}
	if consent == nil || consent.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if !consent.Active() {
		return nil, domain.ErrInvalidTransition
	}
	now := uc.now().UTC()
	consent.RevokedAt = &now
	if err := uc.repo.UpdateConsent(ctx, consent); err != nil {
		return nil, err
	}
	return toConsentResponse(consent), nil
}

// ListConsents consentimientos del titular.
func (uc *LGPDUseCase) ListConsents(ctx context.Context, companyID, customerID string) ([]dto.ConsentResponse, error) {
	if _, err := uc.customer(ctx, companyID, customerID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListConsents(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConsentResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toConsentResponse(c))
	}
	return out, nil
}

// OpenRequest abre una solicitud de exportación o anonimización.
func (uc *LGPDUseCase) OpenRequest(ctx context.Context, companyID, userID string, in dto.OpenDataRequestRequest) (*dto.DataRequestResponse, error) {
	if in.Type != entity.DataRequestExport && in.Type != entity.DataRequestAnonymize {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.customer(ctx, companyID, in.CustomerID); err != nil {
		return nil, err
	}
	req := &entity.DataSubjectRequest{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		CustomerID:  in.CustomerID,
		Type:        in.Type,
		Status:      entity.DataRequestPending,
		RequestedBy: userID,
		CreatedAt:   uc.now().UTC(),
	}
	if err := uc.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return toDataRequestResponse(req), nil
}

func (uc *LGPDUseCase) pendingRequest(ctx context.Context, companyID, id string) (*entity.DataSubjectRequest, error) {
	req, err := uc.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil || req.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if req.Status != entity.DataRequestPending {
		return nil, domain.ErrInvalidTransition
	}
	return req, nil
}

// exportBundle paquete de datos del titular.
type exportBundle struct {
	Customer    dto.CustomerResponse  `json:"customer"`
	Sales       []exportSale          `json:"sales"`
	Consents    []dto.ConsentResponse `json:"consents"`
	GeneratedAt time.Time             `json:"generated_at"`
}

type exportSale struct {
	ID        string    `json:"id"`
	Number    int64     `json:"number"`
	Status    string    `json:"status"`
	Total     string    `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// ProcessRequest ejecuta una solicitud pendiente. Una solicitud completada no vuelve a procesarse.
func (uc *LGPDUseCase) ProcessRequest(ctx context.Context, companyID, id string) (*dto.DataRequestResponse, error) {
	req, err := uc.pendingRequest(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	customer, err := uc.customer(ctx, companyID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	switch req.Type {
	case entity.DataRequestExport:
		raw, err := uc.export(ctx, customer)
		if err != nil {
			return nil, err
		}
		req.Result = raw
	case entity.DataRequestAnonymize:
		if err := uc.anonymize(ctx, customer); err != nil {
			return nil, err
		}
		req.Result = json.RawMessage(`{"anonymized":true}`)
	default:
		return nil, domain.ErrInvalidInput
	}
	now := uc.now().UTC()
	req.Status = entity.DataRequestCompleted
	req.CompletedAt = &now
	if err := uc.repo.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	uc.log.Info().Str("request_id", req.ID).Str("type", req.Type).Str("document", brdocs.Mask(customer.Document)).Msg("solicitud LGPD procesada")
	return toDataRequestResponse(req), nil
}

func (uc *LGPDUseCase) export(ctx context.Context, c *entity.Customer) (json.RawMessage, error) {
	sales, err := uc.sales.ListByCustomer(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	consents, err := uc.repo.ListConsents(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	b := exportBundle{
		Customer:    *ToCustomerResponse(c),
		Sales:       make([]exportSale, 0, len(sales)),
		Consents:    make([]dto.ConsentResponse, 0, len(consents)),
		GeneratedAt: uc.now().UTC(),
	}
	for _, s := range sales {
		b.Sales = append(b.Sales, exportSale{ID: s.ID, Number: s.Number, Status: s.Status, Total: s.Total.StringFixed(2), CreatedAt: s.CreatedAt})
	}
	for _, cs := range consents {
		b.Consents = append(b.Consents, *toConsentResponse(cs))
	}
	return json.Marshal(b)
}

// anonymize reemplaza los datos personales; el documento queda como hash para conservar
// la unicidad por empresa sin guardar el dato. Los consentimientos vigentes se revocan.
func (uc *LGPDUseCase) anonymize(ctx context.Context, c *entity.Customer) error {
	sum := sha256.Sum256([]byte(c.CompanyID + ":" + c.Document))
	c.Name = anonymizedName
	c.Document = hex.EncodeToString(sum[:])
	c.Email = ""
	c.Phone = ""
	c.Address = entity.Address{}
	c.SearchKey = ""
	c.Anonymized = true
	c.UpdatedAt = uc.now().UTC()
	if err := uc.customers.Update(ctx, c); err != nil {
		return err
	}
	consents, err := uc.repo.ListConsents(ctx, c.ID)
	if err != nil {
		return err
	}
	now := uc.now().UTC()
	for _, cs := range consents {
		if cs.Active() {
			cs.RevokedAt = &now
			if err := uc.repo.UpdateConsent(ctx, cs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RejectRequest rechaza una solicitud pendiente con motivo.
func (uc *LGPDUseCase) RejectRequest(ctx context.Context, companyID, id, reason string) (*dto.DataRequestResponse, error) {
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}
	req, err := uc.pendingRequest(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	req.Status = entity.DataRequestRejected
	req.Reason = reason
	req.CompletedAt = &now
	if err := uc.repo.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	return toDataRequestResponse(req), nil
}

// ListRequests solicitudes de la empresa por estado (vacío = todas).
func (uc *LGPDUseCase) ListRequests(ctx context.Context, companyID, status string) ([]dto.DataRequestResponse, error) {
	list, err := uc.repo.ListRequests(ctx, companyID, status)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DataRequestResponse, 0, len(list))
	for _, r := range list {
		resp := toDataRequestResponse(r)
		resp.Result = nil
		out = append(out, *resp)
	}
	return out, nil
}

// GetRequest solicitud con el resultado.
func (uc *LGPDUseCase) GetRequest(ctx context.Context, companyID, id string) (*dto.DataRequestResponse, error) {
	req, err := uc.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil || req.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return toDataRequestResponse(req), nil
}

func toConsentResponse(c *entity.Consent) *dto.ConsentResponse {
	return &dto.ConsentResponse{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		Purpose:    c.Purpose,
		LegalBasis: c.LegalBasis,
		Source:     c.Source,
		Active:     c.Active(),
		GrantedAt:  c.GrantedAt,
		RevokedAt:  c.RevokedAt,
	}
}

func toDataRequestResponse(r *entity.DataSubjectRequest) *dto.DataRequestResponse {
	return &dto.DataRequestResponse{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		Type:        r.Type,
		Status:      r.Status,
		Result:      r.Result,
		Reason:      r.Reason,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}
