package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// CustomerFilter filtros de listado de clientes.
type CustomerFilter struct {
	Search string // sobre SearchKey (sin acentos)
	Limit  int
	Offset int
}

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByDocument(ctx context.Context, companyID, document string) (*entity.Customer, error)
	List(ctx context.Context, companyID string, f CustomerFilter) ([]*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id string) error
}
