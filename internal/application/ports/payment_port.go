package ports

import (
	"context"
	"time"
)

// CheckoutRequest solicitud de una sesión de pago para suscribir un plan.
type CheckoutRequest struct {
	CompanyID  string
	Email      string
	PlanCode   string
	PriceID    string
	CustomerID string // cliente ya existente en el gateway, opcional
}

// CheckoutSession sesión creada en el gateway; URL es a donde se redirige al usuario.
type CheckoutSession struct {
	ID  string
	URL string
}

// Tipos de evento de pago que la aplicación procesa.
const (
	PaymentEventCheckoutCompleted   = "checkout.completed"
	PaymentEventSubscriptionUpdated = "subscription.updated"
	PaymentEventSubscriptionDeleted = "subscription.deleted"
	PaymentEventIgnored             = "ignored"
)

// PaymentEvent evento de webhook ya verificado y normalizado.
type PaymentEvent struct {
	ID               string
	Type             string
	RawType          string
	CompanyID        string
	PlanCode         string
	CustomerID       string
	SubscriptionID   string
	Status           string
	CurrentPeriodEnd *time.Time
}

// PaymentGateway puerto hacia el procesador de pagos (Stripe).
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// ParseWebhook verifica la firma y normaliza el evento.
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}
