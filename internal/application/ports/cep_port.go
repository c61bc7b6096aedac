package ports

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// CEPLookup resuelve un CEP a una dirección (ViaCEP u otro proveedor).
// Devuelve domain.ErrNotFound si el CEP no existe.
type CEPLookup interface {
	Lookup(ctx context.Context, cep string) (*entity.Address, error)
}
