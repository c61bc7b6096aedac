package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/brdocs"
	"github.com/jhoicas/erp-api/pkg/textkey"
)

// CustomerUseCase clientes de la empresa: documento validado, único por empresa,
// dirección opcionalmente completada desde ViaCEP.
type CustomerUseCase struct {
	repo repository.CustomerRepository
	cep  ports.CEPLookup
	log  zerolog.Logger
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, cep ports.CEPLookup, log zerolog.Logger) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, cep: cep, log: log}
}

// Create valida el CPF/CNPJ, rechaza duplicados y completa la dirección si se pide.
func (uc *CustomerUseCase) Create(ctx context.Context, companyID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	kind, doc, err := brdocs.ValidateDocument(in.Document)
	if err != nil {
		return nil, DocumentError(err)
	}
	existing, err := uc.repo.GetByDocument(ctx, companyID, doc)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	addr, err := uc.resolveAddress(ctx, in.Address, in.LookupCEP)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &entity.Customer{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		Name:         in.Name,
		Document:     doc,
		DocumentKind: string(kind),
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      addr,
		SearchKey:    textkey.Normalize(in.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return ToCustomerResponse(c), nil
}

// GetByID cliente de la empresa.
func (uc *CustomerUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.CustomerResponse, error) {
	c, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToCustomerResponse(c), nil
}

func (uc *CustomerUseCase) get(ctx context.Context, companyID, id string) (*entity.Customer, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// List busca por nombre sin distinguir acentos ni mayúsculas.
func (uc *CustomerUseCase) List(ctx context.Context, companyID, search string, limit, offset int) (*dto.CustomerListResponse, error) {
	list, err := uc.repo.List(ctx, companyID, repository.CustomerFilter{
		Search: textkey.Normalize(search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *ToCustomerResponse(c))
	}
	return &dto.CustomerListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// Update cambia datos de contacto y dirección. Un cliente anonimizado no se edita.
func (uc *CustomerUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if c.Anonymized {
		return nil, domain.ErrConflict
	}
	if in.Name != nil {
		c.Name = *in.Name
		c.SearchKey = textkey.Normalize(*in.Name)
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Address != nil {
		addr, err := uc.resolveAddress(ctx, *in.Address, in.LookupCEP)
		if err != nil {
			return nil, err
		}
		c.Address = addr
	}
	c.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return ToCustomerResponse(c), nil
}

// Delete elimina el cliente; si tiene ventas o contratos el repositorio devuelve ErrConflict.
func (uc *CustomerUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.get(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// ValidateDocument valida un CPF/CNPJ sin persistir nada.
func (uc *CustomerUseCase) ValidateDocument(document string) dto.DocumentValidationResponse {
	kind, doc, err := brdocs.ValidateDocument(document)
	if err != nil {
		return dto.DocumentValidationResponse{Valid: false, Error: DocumentMessage(err)}
	}
	formatted := brdocs.FormatCPF(doc)
	if kind == brdocs.KindCNPJ {
		formatted = brdocs.FormatCNPJ(doc)
	}
	return dto.DocumentValidationResponse{Valid: true, Kind: string(kind), Normalized: doc, Formatted: formatted}
}

// CheckDuplicate informa si el documento ya pertenece a un cliente de la empresa.
func (uc *CustomerUseCase) CheckDuplicate(ctx context.Context, companyID, document string) (*dto.DuplicateCheckResponse, error) {
	_, doc, err := brdocs.ValidateDocument(document)
	if err != nil {
		return nil, DocumentError(err)
	}
	c, err := uc.repo.GetByDocument(ctx, companyID, doc)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &dto.DuplicateCheckResponse{Exists: false}, nil
	}
	return &dto.DuplicateCheckResponse{Exists: true, CustomerID: c.ID}, nil
}

// LookupCEP consulta la dirección de un CEP.
func (uc *CustomerUseCase) LookupCEP(ctx context.Context, cep string) (*dto.AddressDTO, error) {
	if uc.cep == nil {
		return nil, domain.ErrNotConfigured
	}
	addr, err := uc.cep.Lookup(ctx, cep)
	if err != nil {
		return nil, err
	}
	out := AddressToDTO(*addr)
	return &out, nil
}

// resolveAddress normaliza la dirección y, con lookup, la completa desde ViaCEP.
// CEP inexistente es error del usuario; con el proveedor caído se guarda lo informado.
func (uc *CustomerUseCase) resolveAddress(ctx context.Context, in dto.AddressDTO, lookup bool) (entity.Address, error) {
	addr, err := AddressFromDTO(in)
	if err != nil {
		return entity.Address{}, err
	}
	if !lookup || addr.CEP == "" || uc.cep == nil {
		return addr, nil
	}
	found, err := uc.cep.Lookup(ctx, addr.CEP)
	switch {
	case err == nil:
		return mergeAddress(addr, found), nil
	case errors.Is(err, domain.ErrNotFound):
		return entity.Address{}, domain.Detail(domain.ErrInvalidInput, "CEP %s não encontrado", addr.CEP)
	case errors.Is(err, domain.ErrProviderUnavailable):
		uc.log.Warn().Err(err).Str("cep", addr.CEP).Msg("ViaCEP indisponible, se guarda la dirección informada")
		return addr, nil
	default:
		return entity.Address{}, err
	}
}

// ToCustomerResponse convierte la entidad a DTO con el documento formateado.
func ToCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	if c == nil {
		return nil
	}
	doc := c.Document
	switch c.DocumentKind {
	case string(brdocs.KindCPF):
		doc = brdocs.FormatCPF(c.Document)
	case string(brdocs.KindCNPJ):
		doc = brdocs.FormatCNPJ(c.Document)
	}
	return &dto.CustomerResponse{
		ID:           c.ID,
		CompanyID:    c.CompanyID,
		Name:         c.Name,
		Document:     doc,
		DocumentKind: c.DocumentKind,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      AddressToDTO(c.Address),
		Anonymized:   c.Anonymized,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
