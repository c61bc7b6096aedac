// Package fiscal emisión, seguimiento y cancelación de NF-e a través del proveedor.
package fiscal

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/cache"
	"github.com/jhoicas/erp-api/pkg/nfe"
)

// Límites de la justificativa de cancelamento (SEFAZ).
const (
	minJustification = 15
	maxJustification = 255
)

// UseCase NF-e de ventas confirmadas.
type UseCase struct {
	tx        repository.TxRunner
	invoices  repository.FiscalInvoiceRepository
	sales     repository.SaleRepository
	companies repository.CompanyRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	provider  ports.NFeProvider
	storage   ports.ObjectStorage
	cache     *cache.Cache
	log       zerolog.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso. provider nil deja la emisión sin configurar.
func NewUseCase(
	tx repository.TxRunner,
	invoices repository.FiscalInvoiceRepository,
	sales repository.SaleRepository,
	companies repository.CompanyRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	provider ports.NFeProvider,
	storage ports.ObjectStorage,
	c *cache.Cache,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		tx:        tx,
		invoices:  invoices,
		sales:     sales,
		companies: companies,
		customers: customers,
		products:  products,
		provider:  provider,
		storage:   storage,
		cache:     c,
		log:       log,
		now:       time.Now,
	}
}

// providerFailureMessage texto guardado en la nota cuando el proveedor rechaza el envío.
// El error crudo solo va al log.
func providerFailureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "emissor de NF-e indisponível; tente novamente"
	case errors.Is(err, domain.ErrInvalidInput):
		return "dados da nota recusados pelo emissor"
	case errors.Is(err, domain.ErrConflict):
		return "emissor informou conflito com nota existente"
	}
	return "falha ao enviar a nota ao emissor"
}

// XMLKey ruta del XML autorizado en el almacenamiento de objetos.
func XMLKey(companyID, accessKey string) string {
	return fmt.Sprintf("nfe/%s/%s.xml", companyID, accessKey)
}

// Issue crea la NF-e local (pending) y la envía al proveedor. Una venta admite una sola
// NF-e activa; una rechazada o con error puede reemitirse.
func (uc *UseCase) Issue(ctx context.Context, companyID, saleID string) (*dto.FiscalInvoiceResponse, error) {
	if uc.provider == nil {
		return nil, domain.ErrNotConfigured
	}
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if sale.Status != entity.SaleStatusConfirmed {
		return nil, domain.Detail(domain.ErrInvalidTransition, "venda %s", sale.Status)
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if company.NFeProviderID == "" {
		return nil, domain.Detail(domain.ErrNotConfigured, "empresa sem cadastro no emissor de NF-e")
	}

	// ── 1. Datos de la nota ────────────────────────────────────────────────────
	req := ports.NFeIssueRequest{Company: company, Sale: sale, Products: map[string]*entity.Product{}}
	if sale.CustomerID != "" {
		if req.Customer, err = uc.customers.GetByID(ctx, sale.CustomerID); err != nil {
			return nil, err
		}
	}
	for _, it := range sale.Items {
		p, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.Detail(domain.ErrNotFound, "produto %s", it.ProductID)
		}
		req.Products[p.ID] = p
	}

	// ── 2. Registro local en pending ──────────────────────────────────────────
	now := uc.now().UTC()
	inv := &entity.FiscalInvoice{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		SaleID:    sale.ID,
		Status:    entity.NFeStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// La venta se bloquea hasta registrar la nota: un Cancel concurrente espera y ve la NF-e.
	err = uc.tx.Run(ctx, func(r repository.TxRepos) error {
		locked, err := r.Sales.GetForUpdate(ctx, sale.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if locked.Status != entity.SaleStatusConfirmed {
			return domain.Detail(domain.ErrInvalidTransition, "venda %s", locked.Status)
		}
		existing, err := r.Invoices.ListBySale(ctx, sale.ID)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.IsActive() {
				return domain.Detail(domain.ErrConflict, "venda já possui NF-e %s", e.Status)
			}
		}
		if err := r.Invoices.Create(ctx, inv); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.Detail(domain.ErrConflict, "venda já possui NF-e ativa")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	req.InvoiceID = inv.ID

	// ── 3. Envío al proveedor ─────────────────────────────────────────────────
	st, err := uc.provider.Issue(ctx, company.NFeProviderID, req)
	if err != nil {
		inv.Status = entity.NFeStatusError
		inv.Message = providerFailureMessage(err)
		inv.UpdatedAt = uc.now().UTC()
		if uerr := uc.invoices.Update(ctx, inv); uerr != nil {
			uc.log.Error().Err(uerr).Str("invoice_id", inv.ID).Msg("no se pudo guardar el error de emisión")
		}
		uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Str("sale_id", sale.ID).Msg("emisión de NF-e falló")
		return nil, err
	}
	inv.ProviderID = st.ProviderID
	uc.apply(ctx, company, inv, st)
	if err := uc.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	uc.cache.InvalidateCompany(ctx, companyID, usecase.DashboardResource)
	uc.log.Info().Str("invoice_id", inv.ID).Str("status", inv.Status).Msg("NF-e enviada al proveedor")
	return ToResponse(inv), nil
}

// Refresh consulta el proveedor. Al autorizarse descarga el XML, valida la chave y lo archiva;
// si el archivo falló antes, se reintenta aquí.
func (uc *UseCase) Refresh(ctx context.Context, companyID, id string) (*dto.FiscalInvoiceResponse, error) {
	inv, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !inv.IsActive() || inv.ProviderID == "" {
		return ToResponse(inv), nil
	}
	if uc.provider == nil {
		return nil, domain.ErrNotConfigured
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	st, err := uc.provider.Get(ctx, company.NFeProviderID, inv.ProviderID)
	if err != nil {
		return nil, err
	}
	before := inv.Status
	uc.apply(ctx, company, inv, st)
	if err := uc.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	if before != inv.Status {
		uc.cache.InvalidateCompany(ctx, companyID, usecase.DashboardResource)
		uc.log.Info().Str("invoice_id", inv.ID).Str("from", before).Str("to", inv.Status).Msg("estado de NF-e actualizado")
	}
	return ToResponse(inv), nil
}

// apply copia el estado del proveedor respetando las transiciones válidas.
func (uc *UseCase) apply(ctx context.Context, company *entity.Company, inv *entity.FiscalInvoice, st *ports.NFeProviderStatus) {
	if st.Status != inv.Status && !inv.CanTransition(st.Status) {
		uc.log.Warn().Str("invoice_id", inv.ID).Str("from", inv.Status).Str("to", st.Status).Msg("transición de NF-e ignorada")
		return
	}
	now := uc.now().UTC()
	inv.Status = st.Status
	inv.Message = st.Message
	if st.AccessKey != "" {
		inv.AccessKey = st.AccessKey
	}
	if st.Protocol != "" {
		inv.Protocol = st.Protocol
	}
	if st.Number != "" {
		inv.Number = st.Number
	}
	if st.Series != "" {
		inv.Series = st.Series
	}
	inv.UpdatedAt = now
	switch inv.Status {
	case entity.NFeStatusAuthorized:
		if inv.IssuedAt == nil {
			inv.IssuedAt = &now
		}
		if inv.XMLKey == "" {
			if err := uc.archive(ctx, company, inv); err != nil {
				uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("no se pudo archivar el XML de la NF-e")
			}
		}
	case entity.NFeStatusCancelled:
		if inv.CancelledAt == nil {
			inv.CancelledAt = &now
		}
	}
}

// archive descarga el nfeProc, verifica chave y protocolo y lo guarda con su digest C14N.
func (uc *UseCase) archive(ctx context.Context, company *entity.Company, inv *entity.FiscalInvoice) error {
	if uc.storage == nil {
		return domain.ErrNotConfigured
	}
	raw, err := uc.provider.DownloadXML(ctx, company.NFeProviderID, inv.ProviderID)
	if err != nil {
		return err
	}
	auth, err := nfe.ParseAuthorizedXML(raw)
	if err != nil {
		return err
	}
	if !auth.Authorized() {
		return fmt.Errorf("fiscal: XML con cStat %s (%s)", auth.Status, auth.Reason)
	}
	if inv.AccessKey != "" && string(auth.AccessKey) != inv.AccessKey {
		return fmt.Errorf("fiscal: chave del XML %s no coincide con %s", auth.AccessKey, inv.AccessKey)
	}
	if auth.AccessKey.CNPJ() != company.CNPJ {
		return fmt.Errorf("fiscal: chave %s emitida por CNPJ %s, empresa %s", auth.AccessKey, auth.AccessKey.CNPJ(), company.CNPJ)
	}
	if auth.AccessKey.Model() != "55" {
		return fmt.Errorf("fiscal: chave %s de modelo %s", auth.AccessKey, auth.AccessKey.Model())
	}
	digest, err := nfe.CanonicalDigest(raw)
	if err != nil {
		return err
	}
	key := XMLKey(inv.CompanyID, string(auth.AccessKey))
	if err := uc.storage.Put(ctx, key, "application/xml", raw); err != nil {
		return err
	}
	inv.AccessKey = string(auth.AccessKey)
	inv.XMLKey = key
	inv.XMLDigest = digest
	if inv.Protocol == "" {
		inv.Protocol = auth.Protocol
	}
	if inv.Number == "" {
		inv.Number = auth.Number
	}
	if inv.Number == "" {
		inv.Number = auth.AccessKey.Number()
	}
	if inv.Series == "" {
		inv.Series = auth.Series
	}
	if !auth.ReceivedAt.IsZero() {
		t := auth.ReceivedAt.UTC()
		inv.IssuedAt = &t
	}
	return nil
}

// Cancel solicita el cancelamento de una NF-e autorizada.
func (uc *UseCase) Cancel(ctx context.Context, companyID, id, justification string) (*dto.FiscalInvoiceResponse, error) {
	n := utf8.RuneCountInString(justification)
	if n < minJustification || n > maxJustification {
		return nil, domain.Detail(domain.ErrInvalidInput, "justificativa deve ter entre %d e %d caracteres", minJustification, maxJustification)
	}
	if uc.provider == nil {
		return nil, domain.ErrNotConfigured
	}
	inv, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !inv.CanTransition(entity.NFeStatusCancelled) {
		return nil, domain.ErrInvalidTransition
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	st, err := uc.provider.Cancel(ctx, company.NFeProviderID, inv.ProviderID, justification)
	if err != nil {
		return nil, err
	}
	uc.apply(ctx, company, inv, st)
	if err := uc.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	uc.cache.InvalidateCompany(ctx, companyID, usecase.DashboardResource)
	uc.log.Info().Str("invoice_id", inv.ID).Str("status", inv.Status).Msg("cancelamento de NF-e solicitado")
	return ToResponse(inv), nil
}

// Get NF-e de la empresa.
func (uc *UseCase) Get(ctx context.Context, companyID, id string) (*dto.FiscalInvoiceResponse, error) {
	inv, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToResponse(inv), nil
}

func (uc *UseCase) get(ctx context.Context, companyID, id string) (*entity.FiscalInvoice, error) {
	inv, err := uc.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// List NF-e por estado (vacío = todas).
func (uc *UseCase) List(ctx context.Context, companyID, status string, limit, offset int) ([]dto.FiscalInvoiceResponse, error) {
	list, err := uc.invoices.List(ctx, companyID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FiscalInvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, *ToResponse(inv))
	}
	return out, nil
}

// DownloadXML XML archivado de una NF-e autorizada (o cancelada).
func (uc *UseCase) DownloadXML(ctx context.Context, companyID, id string) ([]byte, string, error) {
	inv, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	if inv.XMLKey == "" || uc.storage == nil {
		return nil, "", domain.ErrNotFound
	}
	data, err := uc.storage.Get(ctx, inv.XMLKey)
	if err != nil {
		return nil, "", err
	}
	return data, inv.AccessKey + "-nfe.xml", nil
}

// ToResponse convierte la entidad a DTO.
func ToResponse(inv *entity.FiscalInvoice) *dto.FiscalInvoiceResponse {
	return &dto.FiscalInvoiceResponse{
		ID:          inv.ID,
		SaleID:      inv.SaleID,
		Status:      inv.Status,
		Series:      inv.Series,
		Number:      inv.Number,
		AccessKey:   inv.AccessKey,
		Protocol:    inv.Protocol,
		Message:     inv.Message,
		XMLDigest:   inv.XMLDigest,
		IssuedAt:    inv.IssuedAt,
		CancelledAt: inv.CancelledAt,
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}
}
