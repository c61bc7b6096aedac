package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.PlanRepository = (*PlanRepo)(nil)

// PlanRepo planes y suscripciones sobre PostgreSQL.
type PlanRepo struct {
	q Querier
}

// NewPlanRepository construye el adaptador.
func NewPlanRepository(q Querier) *PlanRepo {
	return &PlanRepo{q: q}
}

const planColumns = `code, name, price_cents, stripe_price_id, modules, active`

func scanPlan(row pgx.Row) (*entity.Plan, error) {
	var p entity.Plan
	if err := row.Scan(&p.Code, &p.Name, &p.PriceCents, &p.StripePriceID, &p.Modules, &p.Active); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlans planes activos ordenados por precio.
func (r *PlanRepo) ListPlans(ctx context.Context) ([]*entity.Plan, error) {
	rows, err := r.q.Query(ctx, `SELECT `+planColumns+` FROM plans WHERE active ORDER BY price_cents`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Plan, error) {
		return scanPlan(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	return list, nil
}

// GetPlan obtiene un plan por código.
func (r *PlanRepo) GetPlan(ctx context.Context, code string) (*entity.Plan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE code = $1`, code))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

const subscriptionColumns = `company_id, plan_code, status, stripe_customer_id, stripe_subscription_id, current_period_end, updated_at`

func (r *PlanRepo) getSubscription(ctx context.Context, where string, arg string) (*entity.Subscription, error) {
	var s entity.Subscription
	err := r.q.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE `+where, arg).
		Scan(&s.CompanyID, &s.PlanCode, &s.Status, &s.StripeCustomerID, &s.StripeSubscriptionID, &s.CurrentPeriodEnd, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &s, nil
}

// GetSubscription suscripción vigente de la empresa.
func (r *PlanRepo) GetSubscription(ctx context.Context, companyID string) (*entity.Subscription, error) {
	return r.getSubscription(ctx, `company_id = $1`, companyID)
}

// GetSubscriptionByStripeID busca por id de suscripción de Stripe (webhooks).
func (r *PlanRepo) GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*entity.Subscription, error) {
	return r.getSubscription(ctx, `stripe_subscription_id = $1`, stripeSubscriptionID)
}

// UpsertSubscription crea o reemplaza la suscripción de la empresa.
func (r *PlanRepo) UpsertSubscription(ctx context.Context, s *entity.Subscription) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id) DO UPDATE SET
			plan_code = EXCLUDED.plan_code, status = EXCLUDED.status,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			current_period_end = EXCLUDED.current_period_end, updated_at = EXCLUDED.updated_at`,
		s.CompanyID, s.PlanCode, s.Status, s.StripeCustomerID, s.StripeSubscriptionID, s.CurrentPeriodEnd, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}
