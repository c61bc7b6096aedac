package dto

import "time"

// PlanResponse plan comercial.
type PlanResponse struct {
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	PriceCents int64    `json:"price_cents"`
	Modules    []string `json:"modules"`
}

// CheckoutRequest inicio de la contratación de un plan.
type CheckoutRequest struct {
	PlanCode string `json:"plan_code" validate:"required"`
}

// CheckoutResponse sesión de checkout de Stripe.
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// SubscriptionResponse suscripción actual de la empresa.
type SubscriptionResponse struct {
	PlanCode         string     `json:"plan_code"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
