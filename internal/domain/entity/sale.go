package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de venta.
const (
	SaleStatusConfirmed = "confirmed"
	SaleStatusCancelled = "cancelled"
)

// Canales de venta.
const (
	ChannelPDV          = "pdv"
	ChannelMercadoLivre = "mercadolivre"
	ChannelShopee       = "shopee"
	ChannelAmazon       = "amazon"
	ChannelMagalu       = "magalu"
)

// IsMarketplaceChannel informa si el canal es un marketplace integrado.
func IsMarketplaceChannel(ch string) bool {
	switch ch {
	case ChannelMercadoLivre, ChannelShopee, ChannelAmazon, ChannelMagalu:
		return true
	}
	return false
}

// Formas de pago.
const (
	PaymentCash   = "dinheiro"
	PaymentPix    = "pix"
	PaymentCard   = "cartao"
	PaymentBoleto = "boleto"
)

// Sale venta confirmada. Total = Subtotal - Discount.
type Sale struct {
	ID            string
	CompanyID     string
	CustomerID    string
	WarehouseID   string
	Number        int64 // consecutivo por empresa
	Status        string
	Channel       string
	ExternalID    string // id del pedido en el marketplace
	PaymentMethod string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Notes         string
	Items         []SaleItem
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CancelledAt   *time.Time
}

// SaleItem línea de venta.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal // Quantity × UnitPrice
}

// ComputeTotals recalcula los totales a partir de las líneas.
func (s *Sale) ComputeTotals() {
	subtotal := decimal.Zero
	for i := range s.Items {
		s.Items[i].Total = s.Items[i].Quantity.Mul(s.Items[i].UnitPrice)
		subtotal = subtotal.Add(s.Items[i].Total)
	}
	s.Subtotal = subtotal
	s.Total = subtotal.Sub(s.Discount)
}
