// Package payments implementa ports.PaymentGateway con Stripe Checkout y webhooks.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/pkg/config"
	"github.com/jhoicas/erp-api/pkg/retry"
)

var _ ports.PaymentGateway = (*StripeGateway)(nil)

// Claves de metadata que viajan en la sesión y en la suscripción.
const (
	metaCompanyID = "company_id"
	metaPlanCode  = "plan_code"
)

// StripeGateway adaptador de Stripe. Los reintentos los hace retry.Do, por eso el
// backend del SDK se configura sin reintentos propios.
type StripeGateway struct {
	api    *client.API
	cfg    config.StripeConfig
	policy retry.Policy
	log    zerolog.Logger
}

// NewStripeGateway construye el gateway contra la API pública de Stripe.
func NewStripeGateway(cfg config.StripeConfig, policy retry.Policy, log zerolog.Logger) *StripeGateway {
	return newStripeGateway(cfg, policy, log, "")
}

func newStripeGateway(cfg config.StripeConfig, policy retry.Policy, log zerolog.Logger, apiURL string) *StripeGateway {
	bc := &stripe.BackendConfig{MaxNetworkRetries: stripe.Int64(0)}
	if apiURL != "" {
		bc.URL = stripe.String(apiURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, bc)
	api := client.New(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return &StripeGateway{api: api, cfg: cfg, policy: policy, log: log}
}

// CreateCheckout crea una Checkout Session en modo suscripción.
func (g *StripeGateway) CreateCheckout(ctx context.Context, req ports.CheckoutRequest) (*ports.CheckoutSession, error) {
	if g.cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: stripe", domain.ErrNotConfigured)
	}
	if req.PriceID == "" {
		return nil, fmt.Errorf("%w: el plan %s no tiene precio en Stripe", domain.ErrInvalidInput, req.PlanCode)
	}
	meta := map[string]string{metaCompanyID: req.CompanyID, metaPlanCode: req.PlanCode}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		ClientReferenceID: stripe.String(req.CompanyID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{Metadata: meta},
	}
	params.Context = ctx
	for k, v := range meta {
		params.AddMetadata(k, v)
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	} else if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}

	var sess *stripe.CheckoutSession
	err := retry.Do(ctx, g.policy, func(context.Context) error {
		var err error
		sess, err = g.api.CheckoutSessions.New(params)
		return asStatusError(err)
	})
	if err != nil {
		g.log.Error().Err(err).Str("company_id", req.CompanyID).Str("plan", req.PlanCode).Msg("stripe: crear checkout")
		return nil, fmt.Errorf("%w: stripe: %v", domain.ErrProviderUnavailable, err)
	}
	return &ports.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// asStatusError expone el status HTTP de un *stripe.Error para que retry decida.
func asStatusError(err error) error {
	if err == nil {
		return nil
	}
	var se *stripe.Error
	if errors.As(err, &se) && se.HTTPStatusCode > 0 {
		return &retry.StatusError{StatusCode: se.HTTPStatusCode, Body: se.Msg}
	}
	return err
}

// ParseWebhook verifica la firma Stripe-Signature y normaliza el evento.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*ports.PaymentEvent, error) {
	if g.cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook de stripe", domain.ErrNotConfigured)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: firma de webhook inválida: %v", domain.ErrUnauthorized, err)
	}

	out := &ports.PaymentEvent{ID: event.ID, RawType: string(event.Type), Type: ports.PaymentEventIgnored}
	switch event.Type {
	case "checkout.session.completed":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("%w: checkout session: %v", domain.ErrInvalidInput, err)
		}
		out.Type = ports.PaymentEventCheckoutCompleted
		out.CompanyID = s.ClientReferenceID
		if out.CompanyID == "" {
			out.CompanyID = s.Metadata[metaCompanyID]
		}
		out.PlanCode = s.Metadata[metaPlanCode]
		out.Status = string(stripe.SubscriptionStatusActive)
		if s.Customer != nil {
			out.CustomerID = s.Customer.ID
		}
		if s.Subscription != nil {
			out.SubscriptionID = s.Subscription.ID
		}
	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: subscription: %v", domain.ErrInvalidInput, err)
		}
		out.Type = ports.PaymentEventSubscriptionUpdated
		if event.Type == "customer.subscription.deleted" {
			out.Type = ports.PaymentEventSubscriptionDeleted
		}
		out.SubscriptionID = sub.ID
		out.Status = string(sub.Status)
		out.CompanyID = sub.Metadata[metaCompanyID]
		out.PlanCode = sub.Metadata[metaPlanCode]
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
		if sub.CurrentPeriodEnd > 0 {
			end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
			out.CurrentPeriodEnd = &end
		}
	default:
		g.log.Debug().Str("type", string(event.Type)).Msg("stripe: evento ignorado")
	}
	return out, nil
}
