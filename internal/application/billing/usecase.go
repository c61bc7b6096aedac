// Package billing planes del SaaS: checkout en Stripe y sincronización de módulos por webhook.
package billing

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/cache"
)

// UseCase planes y suscripciones.
type UseCase struct {
	plans     repository.PlanRepository
	companies repository.CompanyRepository
	gateway   ports.PaymentGateway
	cache     *cache.Cache
	log       zerolog.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(plans repository.PlanRepository, companies repository.CompanyRepository, gateway ports.PaymentGateway, c *cache.Cache, log zerolog.Logger) *UseCase {
	return &UseCase{plans: plans, companies: companies, gateway: gateway, cache: c, log: log, now: time.Now}
}

// ListPlans planes activos.
func (uc *UseCase) ListPlans(ctx context.Context) ([]dto.PlanResponse, error) {
	list, err := uc.plans.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlanResponse, 0, len(list))
	for _, p := range list {
		if !p.Active {
			continue
		}
		out = append(out, dto.PlanResponse{Code: p.Code, Name: p.Name, PriceCents: p.PriceCents, Modules: p.Modules})
	}
	return out, nil
}

// GetSubscription suscripción vigente de la empresa.
func (uc *UseCase) GetSubscription(ctx context.Context, companyID string) (*dto.SubscriptionResponse, error) {
	sub, err := uc.plans.GetSubscription(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNotFound
	}
	return toSubscriptionResponse(sub), nil
}

// Checkout abre una sesión de Stripe para el plan. Si la empresa aún no tiene acceso,
// la suscripción queda pending hasta que llegue el webhook.
func (uc *UseCase) Checkout(ctx context.Context, companyID, email string, in dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if uc.gateway == nil {
		return nil, domain.ErrNotConfigured
	}
	plan, err := uc.plans.GetPlan(ctx, in.PlanCode)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.Active {
		return nil, domain.Detail(domain.ErrNotFound, "plano %s", in.PlanCode)
	}
	sub, err := uc.plans.GetSubscription(ctx, companyID)
	if err != nil {
		return nil, err
	}
	req := ports.CheckoutRequest{CompanyID: companyID, Email: email, PlanCode: plan.Code, PriceID: plan.StripePriceID}
	if sub != nil {
		req.CustomerID = sub.StripeCustomerID
	}
	session, err := uc.gateway.CreateCheckout(ctx, req)
	if err != nil {
		return nil, err
	}
	if sub == nil || !sub.GrantsAccess() {
		pending := &entity.Subscription{CompanyID: companyID, PlanCode: plan.Code, Status: entity.SubscriptionPending, UpdatedAt: uc.now().UTC()}
		if sub != nil {
			pending.StripeCustomerID = sub.StripeCustomerID
			pending.StripeSubscriptionID = sub.StripeSubscriptionID
		}
		if err := uc.plans.UpsertSubscription(ctx, pending); err != nil {
			return nil, err
		}
	}
	return &dto.CheckoutResponse{SessionID: session.ID, URL: session.URL}, nil
}

// HandleWebhook verifica y aplica un evento de Stripe. Devuelve el evento normalizado.
func (uc *UseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) (*ports.PaymentEvent, error) {
	if uc.gateway == nil {
		return nil, domain.ErrNotConfigured
	}
	ev, err := uc.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return nil, err
	}
	if ev.Type == ports.PaymentEventIgnored {
		return ev, nil
	}

	// ── Suscripción afectada ──────────────────────────────────────────────────
	var sub *entity.Subscription
	if ev.SubscriptionID != "" {
		if sub, err = uc.plans.GetSubscriptionByStripeID(ctx, ev.SubscriptionID); err != nil {
			return nil, err
		}
	}
	if sub == nil && ev.CompanyID != "" {
		if sub, err = uc.plans.GetSubscription(ctx, ev.CompanyID); err != nil {
			return nil, err
		}
	}
	if sub == nil {
		if ev.CompanyID == "" {
			uc.log.Warn().Str("event_id", ev.ID).Str("type", ev.RawType).Msg("webhook sin empresa asociada, ignorado")
			return ev, nil
		}
		sub = &entity.Subscription{CompanyID: ev.CompanyID}
	}
	previousPlan := sub.PlanCode

	if ev.PlanCode != "" {
		sub.PlanCode = ev.PlanCode
	}
	if ev.CustomerID != "" {
		sub.StripeCustomerID = ev.CustomerID
	}
	if ev.SubscriptionID != "" {
		sub.StripeSubscriptionID = ev.SubscriptionID
	}
	if ev.CurrentPeriodEnd != nil {
		sub.CurrentPeriodEnd = ev.CurrentPeriodEnd
	}
	switch ev.Type {
	case ports.PaymentEventCheckoutCompleted:
		sub.Status = entity.SubscriptionActive
	case ports.PaymentEventSubscriptionUpdated:
		sub.Status = ev.Status
	case ports.PaymentEventSubscriptionDeleted:
		sub.Status = entity.SubscriptionCanceled
	}
	sub.UpdatedAt = uc.now().UTC()
	if err := uc.plans.UpsertSubscription(ctx, sub); err != nil {
		return nil, err
	}

	// ── Módulos del plan ──────────────────────────────────────────────────────
	if previousPlan != "" && previousPlan != sub.PlanCode {
		if err := uc.setPlanModules(ctx, sub.CompanyID, previousPlan, false, nil); err != nil {
			return nil, err
		}
	}
	if err := uc.setPlanModules(ctx, sub.CompanyID, sub.PlanCode, sub.GrantsAccess(), sub.CurrentPeriodEnd); err != nil {
		return nil, err
	}
	uc.cache.InvalidateCompany(ctx, sub.CompanyID, usecase.ModuleResource)
	uc.log.Info().Str("event_id", ev.ID).Str("type", ev.RawType).Str("company_id", sub.CompanyID).
		Str("plan", sub.PlanCode).Str("status", sub.Status).Msg("webhook de pagos aplicado")
	return ev, nil
}

// setPlanModules activa o desactiva los módulos incluidos en el plan.
func (uc *UseCase) setPlanModules(ctx context.Context, companyID, planCode string, active bool, expires *time.Time) error {
	if planCode == "" {
		return nil
	}
	plan, err := uc.plans.GetPlan(ctx, planCode)
	if err != nil {
		return err
	}
	if plan == nil {
		uc.log.Warn().Str("plan", planCode).Msg("plan desconocido en webhook")
		return nil
	}
	now := uc.now().UTC()
	for _, m := range plan.Modules {
		if !entity.IsValidModule(m) {
			continue
		}
		mod := &entity.CompanyModule{CompanyID: companyID, ModuleName: m, IsActive: active, ActivatedAt: now, UpdatedAt: now}
		if active {
			mod.ExpiresAt = expires
		}
		if err := uc.companies.SetModule(ctx, mod); err != nil {
			return err
		}
	}
	return nil
}

func toSubscriptionResponse(s *entity.Subscription) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		PlanCode:         s.PlanCode,
		Status:           s.Status,
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		UpdatedAt:        s.UpdatedAt,
	}
}
