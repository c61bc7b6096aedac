package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/cache"
)

// ModuleResource recurso de cache de los módulos activos de la empresa.
const ModuleResource = "modules"

// ModuleService verifica qué módulos SaaS tiene activos una empresa.
// Es el único punto de la aplicación que conoce la lógica de activación de módulos.
type ModuleService struct {
	companyRepo repository.CompanyRepository
	cache       *cache.Cache
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(companyRepo repository.CompanyRepository, c *cache.Cache) *ModuleService {
	return &ModuleService{companyRepo: companyRepo, cache: c}
}

// HasActiveModule informa si la empresa tiene el módulo activo y sin vencer.
// Devuelve false (sin error) si la empresa no tiene el módulo contratado.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
// La respuesta se cachea con el preset standard; SetModule y los webhooks de planes la invalidan.
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	if companyID == "" || moduleName == "" {
		return false, fmt.Errorf("module: companyID y moduleName son obligatorios")
	}
	var active bool
	key := cache.BuildKey(companyID, ModuleResource, moduleName)
	err := s.cache.Remember(ctx, key, cache.Standard, &active, func(ctx context.Context) (any, error) {
		return s.companyRepo.HasActiveModule(ctx, companyID, moduleName)
	})
	return active, err
}
