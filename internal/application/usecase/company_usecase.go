package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/brdocs"
	"github.com/jhoicas/erp-api/pkg/cache"
)

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo  repository.CompanyRepository
	cache *cache.Cache
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository, c *cache.Cache) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, cache: c}
}

// Create crea una nueva empresa. Devuelve domain.ErrInvalidDocument si el CNPJ no es válido
// y domain.ErrDuplicate si ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := brdocs.ValidateCNPJ(in.CNPJ); err != nil {
		return nil, DocumentError(err)
	}
	_, cnpj, _ := brdocs.ValidateDocument(in.CNPJ)
	existing, err := uc.repo.GetByCNPJ(ctx, cnpj)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	addr, err := AddressFromDTO(in.Address)
	if err != nil {
		return nil, err
	}
	regime := in.TaxRegime
	if regime == "" {
		regime = entity.TaxRegimeSimples
	}
	now := time.Now().UTC()
	company := &entity.Company{
		ID:                uuid.New().String(),
		Name:              in.Name,
		TradeName:         in.TradeName,
		CNPJ:              cnpj,
		StateRegistration: in.StateRegistration,
		TaxRegime:         regime,
		Address:           addr,
		Phone:             in.Phone,
		Email:             in.Email,
		Status:            "active",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// Update actualiza los datos editables de la empresa (el CNPJ no cambia).
func (uc *CompanyUseCase) Update(ctx context.Context, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		company.Name = *in.Name
	}
	if in.TradeName != nil {
		company.TradeName = *in.TradeName
	}
	if in.StateRegistration != nil {
		company.StateRegistration = *in.StateRegistration
	}
	if in.TaxRegime != nil {
		company.TaxRegime = *in.TaxRegime
	}
	if in.Address != nil {
		addr, err := AddressFromDTO(*in.Address)
		if err != nil {
			return nil, err
		}
		company.Address = addr
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Email != nil {
		company.Email = *in.Email
	}
	if in.Status != nil {
		company.Status = *in.Status
	}
	if in.NFeProviderID != nil {
		company.NFeProviderID = *in.NFeProviderID
	}
	company.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(ctx context.Context, limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ListModules módulos contratados por la empresa.
func (uc *CompanyUseCase) ListModules(ctx context.Context, companyID string) ([]dto.ModuleResponse, error) {
	mods, err := uc.repo.ListModules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ModuleResponse, 0, len(mods))
	for _, m := range mods {
		out = append(out, dto.ModuleResponse{Module: m.ModuleName, IsActive: m.IsActive, ActivatedAt: m.ActivatedAt, ExpiresAt: m.ExpiresAt})
	}
	return out, nil
}

// SetModule activa o desactiva un módulo e invalida el cache de módulos de la empresa.
func (uc *CompanyUseCase) SetModule(ctx context.Context, companyID string, in dto.SetModuleRequest) (*dto.ModuleResponse, error) {
	if !entity.IsValidModule(in.Module) {
		return nil, domain.ErrInvalidInput
	}
	company, err := uc.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now().UTC()
	m := &entity.CompanyModule{
		CompanyID:   companyID,
		ModuleName:  in.Module,
		IsActive:    in.Active,
		ActivatedAt: now,
		ExpiresAt:   in.ExpiresAt,
		UpdatedAt:   now,
	}
	if err := uc.repo.SetModule(ctx, m); err != nil {
		return nil, err
	}
	uc.cache.InvalidateCompany(ctx, companyID, ModuleResource)
	return &dto.ModuleResponse{Module: m.ModuleName, IsActive: m.IsActive, ActivatedAt: m.ActivatedAt, ExpiresAt: m.ExpiresAt}, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:                c.ID,
		Name:              c.Name,
		TradeName:         c.TradeName,
		CNPJ:              brdocs.FormatCNPJ(c.CNPJ),
		StateRegistration: c.StateRegistration,
		TaxRegime:         c.TaxRegime,
		Address:           AddressToDTO(c.Address),
		Phone:             c.Phone,
		Email:             c.Email,
		Status:            c.Status,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}
