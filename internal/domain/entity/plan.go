package entity

import "time"

// Plan plan comercial del SaaS (precio en Stripe + módulos que habilita).
type Plan struct {
	Code          string
	Name          string
	PriceCents    int64
	StripePriceID string
	Modules       []string
	Active        bool
}

// Estados de suscripción (espejo de los de Stripe que nos interesan).
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
	SubscriptionPending  = "pending"
)

// Subscription suscripción de una empresa a un plan.
type Subscription struct {
	CompanyID            string
	PlanCode             string
	Status               string
	StripeCustomerID     string
	StripeSubscriptionID string
	CurrentPeriodEnd     *time.Time
	UpdatedAt            time.Time
}

// GrantsAccess informa si el estado mantiene los módulos habilitados.
func (s *Subscription) GrantsAccess() bool {
	switch s.Status {
	case SubscriptionActive, SubscriptionTrialing, SubscriptionPastDue:
		return true
	}
	return false
}
