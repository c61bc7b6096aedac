package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta; sin unit_price se usa el precio del producto.
type SaleItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest venta de mostrador (PDV).
type CreateSaleRequest struct {
	CustomerID    string            `json:"customer_id" validate:"omitempty,uuid"`
	WarehouseID   string            `json:"warehouse_id" validate:"required,uuid"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=dinheiro pix cartao boleto"`
	Discount      decimal.Decimal   `json:"discount"`
	DueDate       *time.Time        `json:"due_date"` // vencimiento de la cuenta por cobrar (boleto)
	Notes         string            `json:"notes"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleFilterRequest filtros de listado (query string).
type SaleFilterRequest struct {
	Status     string `query:"status" validate:"omitempty,oneof=confirmed cancelled"`
	CustomerID string `query:"customer_id" validate:"omitempty,uuid"`
	Channel    string `query:"channel"`
	From       string `query:"from"` // YYYY-MM-DD
	To         string `query:"to"`
	PageRequest
}

// SaleItemResponse línea de venta.
type SaleItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	Number        int64              `json:"number"`
	CustomerID    string             `json:"customer_id,omitempty"`
	WarehouseID   string             `json:"warehouse_id"`
	Status        string             `json:"status"`
	Channel       string             `json:"channel"`
	ExternalID    string             `json:"external_id,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	Notes         string             `json:"notes,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// MarketplaceCustomer comprador informado por el marketplace.
type MarketplaceCustomer struct {
	Name     string      `json:"name" validate:"required,max=200"`
	Document string      `json:"document" validate:"required"`
	Email    string      `json:"email" validate:"omitempty,email"`
	Phone    string      `json:"phone"`
	Address  *AddressDTO `json:"address"`
}

// MarketplaceItem línea del pedido identificada por SKU.
type MarketplaceItem struct {
	SKU       string          `json:"sku" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// MarketplaceOrderRequest pedido externo a importar.
type MarketplaceOrderRequest struct {
	Channel       string              `json:"channel" validate:"required,oneof=mercadolivre shopee amazon magalu"`
	ExternalID    string              `json:"external_id" validate:"required,max=100"`
	WarehouseID   string              `json:"warehouse_id" validate:"required,uuid"`
	PaymentMethod string              `json:"payment_method" validate:"omitempty,oneof=dinheiro pix cartao boleto"`
	Discount      decimal.Decimal     `json:"discount"`
	Customer      MarketplaceCustomer `json:"customer"`
	Items         []MarketplaceItem   `json:"items" validate:"required,min=1,dive"`
}

// ImportOrderResponse venta resultante; Created=false si el pedido ya estaba importado.
type ImportOrderResponse struct {
	Sale    SaleResponse `json:"sale"`
	Created bool         `json:"created"`
}
