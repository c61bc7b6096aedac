package entity

import "time"

// Estados de la NF-e.
const (
	NFeStatusPending    = "pending"    // creada localmente, aún no enviada
	NFeStatusProcessing = "processing" // aceptada por el proveedor, esperando SEFAZ
	NFeStatusAuthorized = "authorized"
	NFeStatusRejected   = "rejected"
	NFeStatusCancelled  = "cancelled"
	NFeStatusError      = "error"
)

var nfeTransitions = map[string][]string{
	NFeStatusPending:    {NFeStatusProcessing, NFeStatusAuthorized, NFeStatusRejected, NFeStatusError},
	NFeStatusProcessing: {NFeStatusProcessing, NFeStatusAuthorized, NFeStatusRejected, NFeStatusError},
	NFeStatusAuthorized: {NFeStatusCancelled},
}

// FiscalInvoice NF-e emitida para una venta.
type FiscalInvoice struct {
	ID          string
	CompanyID   string
	SaleID      string
	ProviderID  string // id del documento en el proveedor
	Status      string
	Series      string
	Number      string
	AccessKey   string // chave de acesso, 44 dígitos
	Protocol    string
	Message     string // último mensaje del proveedor / SEFAZ
	XMLKey      string // ruta del XML en el almacenamiento de objetos
	XMLDigest   string // SHA-256 del XML canónico
	IssuedAt    *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanTransition informa si la NF-e puede pasar al estado to.
func (f *FiscalInvoice) CanTransition(to string) bool {
	for _, s := range nfeTransitions[f.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// IsActive una NF-e activa bloquea la emisión de otra para la misma venta.
func (f *FiscalInvoice) IsActive() bool {
	switch f.Status {
	case NFeStatusPending, NFeStatusProcessing, NFeStatusAuthorized:
		return true
	}
	return false
}
