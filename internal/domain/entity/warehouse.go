package entity

import "time"

// Warehouse depósito o sucursal donde se almacena inventario.
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
