package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas.
type SaleFilter struct {
	Status     string
	CustomerID string
	Channel    string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// SaleRepository persistencia de ventas con sus líneas.
type SaleRepository interface {
	// NextNumber reserva el siguiente consecutivo de venta de la empresa.
	NextNumber(ctx context.Context, companyID string) (int64, error)
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate lee la venta bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetByExternalID(ctx context.Context, companyID, channel, externalID string) (*entity.Sale, error)
	List(ctx context.Context, companyID string, f SaleFilter) ([]*entity.Sale, error)
	// UpdateStatus cambia el estado solo si la venta sigue en from; si no, ErrInvalidTransition.
	UpdateStatus(ctx context.Context, sale *entity.Sale, from string) error
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.Sale, error)
}
